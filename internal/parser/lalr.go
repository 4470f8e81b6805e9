package parser

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/lexer"
)

// symbol 文法符号。终结符与 lexer.TokenType 编号一致，非终结符从 NumTokenTypes 开始。
type symbol int

// semantic 规约时执行的语义动作。v 和 l 是产生式右部的值和位置，只在调用期间有效。
type semantic func(p *parser, v []any, l []diag.Location) any

type production struct {
	lhs    symbol
	rhs    []symbol
	action semantic
	text   string
}

// grammar 按名称声明的文法，终结符名称取自 lexer.TokenTypeName
type grammar struct {
	rules []rawRule
}

type rawRule struct {
	text   string
	action semantic
}

// rule 追加一条产生式 "Lhs : A B C"，右部为空表示 ε
func (g *grammar) rule(text string, action semantic) {
	g.rules = append(g.rules, rawRule{text: text, action: action})
}

// bitset 终结符集合
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) add(i int)      { b[i/64] |= 1 << (i % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(i%64)) != 0 }
func (b bitset) clone() bitset  { return append(bitset(nil), b...) }
func (b bitset) union(o bitset) bool { // 返回是否有变化
	changed := false
	for i := range b {
		if n := b[i] | o[i]; n != b[i] {
			b[i] = n
			changed = true
		}
	}
	return changed
}

func (b bitset) each(f func(int)) {
	for w, word := range b {
		for word != 0 {
			i := bits.TrailingZeros64(word)
			f(w*64 + i)
			word &^= 1 << i
		}
	}
}

// item LR(0) 项目
type item struct {
	prod int
	dot  int
}

// Conflict 按默认规则消解的冲突
type Conflict struct {
	State    int
	Symbol   string
	Kind     string // "shift/reduce" 或 "reduce/reduce"
	Chosen   string
	Rejected string
}

func (c Conflict) String() string {
	return fmt.Sprintf("state %d on %s: %s conflict, chose %s over %s", c.State, c.Symbol, c.Kind, c.Chosen, c.Rejected)
}

// Table LALR(1) 分析表
type Table struct {
	names    []string
	prods    []*production
	nterm    int
	nnonterm int
	nstates  int

	// action[state*nterm+t]：0 出错，>0 移进到 v-1，<0 按产生式 -v-1 规约（产生式 0 为接受）
	action []int32
	// gotos[state*nnonterm+(A-nterm)]：0 没有，否则转到 v-1
	gotos []int32
	// defaultReduce[state]：没有移进且只有一个规约时为产生式编号+1
	defaultReduce []int32

	// Conflicts 构造过程中按默认规则消解的冲突
	Conflicts []Conflict
}

// Productions 产生式数量（含增广产生式）
func (t *Table) Productions() int { return len(t.prods) }

// States 状态数量
func (t *Table) States() int { return t.nstates }

// Terminals 终结符数量
func (t *Table) Terminals() int { return t.nterm }

// Nonterminals 非终结符数量（含增广开始符号）
func (t *Table) Nonterminals() int { return t.nnonterm }

func (t *Table) act(state int, tok lexer.TokenType) int32 {
	return t.action[state*t.nterm+int(tok)]
}

func (t *Table) gotoState(state int, a symbol) int {
	return int(t.gotos[state*t.nnonterm+int(a)-t.nterm]) - 1
}

// expected 在某状态下可以接受的终结符名称
func (t *Table) expected(state int) []string {
	var out []string
	row := t.action[state*t.nterm : (state+1)*t.nterm]
	for tok, a := range row {
		if a != 0 && lexer.TokenType(tok) != lexer.TOKEN_ERROR {
			out = append(out, t.names[tok])
		}
	}
	return out
}

// builder 表构造过程的中间状态
type builder struct {
	names    []string
	prods    []*production
	byLhs    [][]int // 非终结符下标 -> 产生式
	nterm    int
	nnonterm int

	nullable []bool
	first    []bitset // 非终结符下标 -> FIRST 集

	kernels [][]item
	index   map[string]int
	trans   []map[symbol]int
}

func (b *builder) isTerm(s symbol) bool { return int(s) < b.nterm }

// compile 解析文法声明并为其生成 LALR(1) 分析表
func compile(g *grammar) *Table {
	b := &builder{nterm: int(lexer.NumTokenTypes)}
	for t := 0; t < b.nterm; t++ {
		b.names = append(b.names, lexer.TokenTypeName(lexer.TokenType(t)))
	}
	b.resolve(g)
	b.computeFirst()
	b.buildLR0()
	la := b.lookaheads()
	return b.tables(la)
}

func (b *builder) resolve(g *grammar) {
	syms := make(map[string]symbol, b.nterm)
	for t, name := range b.names {
		syms[name] = symbol(t)
	}
	nonterm := func(name string) symbol {
		if s, ok := syms[name]; ok {
			return s
		}
		s := symbol(len(b.names))
		b.names = append(b.names, name)
		syms[name] = s
		return s
	}

	type parsed struct {
		lhs string
		rhs []string
		raw rawRule
	}
	var rules []parsed
	for _, r := range g.rules {
		f := strings.Fields(r.text)
		if len(f) < 2 || f[1] != ":" {
			panic("parser: malformed rule " + r.text)
		}
		lhs := nonterm(f[0])
		if b.isTerm(lhs) {
			panic("parser: terminal on left side of " + r.text)
		}
		rules = append(rules, parsed{lhs: f[0], rhs: f[2:], raw: r})
	}
	if len(rules) == 0 {
		panic("parser: empty grammar")
	}

	accept := nonterm("$accept")
	b.prods = append(b.prods, &production{
		lhs:  accept,
		rhs:  []symbol{syms[rules[0].lhs]},
		text: "$accept : " + rules[0].lhs,
	})
	for _, r := range rules {
		p := &production{lhs: syms[r.lhs], action: r.raw.action, text: r.raw.text}
		for _, name := range r.rhs {
			s, ok := syms[name]
			if !ok {
				panic(fmt.Sprintf("parser: undefined symbol %q in %s", name, r.raw.text))
			}
			p.rhs = append(p.rhs, s)
		}
		b.prods = append(b.prods, p)
	}

	b.nnonterm = len(b.names) - b.nterm
	b.byLhs = make([][]int, b.nnonterm)
	for i, p := range b.prods {
		b.byLhs[int(p.lhs)-b.nterm] = append(b.byLhs[int(p.lhs)-b.nterm], i)
	}
}

func (b *builder) computeFirst() {
	b.nullable = make([]bool, b.nnonterm)
	b.first = make([]bitset, b.nnonterm)
	for i := range b.first {
		b.first[i] = newBitset(b.nterm + 1)
	}
	for changed := true; changed; {
		changed = false
		for _, p := range b.prods {
			a := int(p.lhs) - b.nterm
			nullable := true
			for _, s := range p.rhs {
				if b.isTerm(s) {
					if !b.first[a].has(int(s)) {
						b.first[a].add(int(s))
						changed = true
					}
					nullable = false
					break
				}
				if b.first[a].union(b.first[int(s)-b.nterm]) {
					changed = true
				}
				if !b.nullable[int(s)-b.nterm] {
					nullable = false
					break
				}
			}
			if nullable && !b.nullable[a] {
				b.nullable[a] = true
				changed = true
			}
		}
	}
}

// firstOf 符号串的 FIRST 集并入 out，返回符号串是否可空
func (b *builder) firstOf(seq []symbol, out bitset) bool {
	for _, s := range seq {
		if b.isTerm(s) {
			out.add(int(s))
			return false
		}
		out.union(b.first[int(s)-b.nterm])
		if !b.nullable[int(s)-b.nterm] {
			return false
		}
	}
	return true
}

func (b *builder) next(it item) (symbol, bool) {
	rhs := b.prods[it.prod].rhs
	if it.dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.dot], true
}

// closure0 LR(0) 闭包
func (b *builder) closure0(kernel []item) []item {
	out := append([]item(nil), kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(out); i++ {
		s, ok := b.next(out[i])
		if !ok || b.isTerm(s) {
			continue
		}
		for _, p := range b.byLhs[int(s)-b.nterm] {
			it := item{prod: p}
			if !seen[it] {
				seen[it] = true
				out = append(out, it)
			}
		}
	}
	return out
}

func kernelKey(k []item) string {
	var sb strings.Builder
	for _, it := range k {
		fmt.Fprintf(&sb, "%d.%d ", it.prod, it.dot)
	}
	return sb.String()
}

func sortItems(k []item) {
	sort.Slice(k, func(i, j int) bool {
		if k[i].prod != k[j].prod {
			return k[i].prod < k[j].prod
		}
		return k[i].dot < k[j].dot
	})
}

// buildLR0 构造 LR(0) 项目集规范族
func (b *builder) buildLR0() {
	b.index = make(map[string]int)
	add := func(k []item) int {
		sortItems(k)
		key := kernelKey(k)
		if s, ok := b.index[key]; ok {
			return s
		}
		s := len(b.kernels)
		b.index[key] = s
		b.kernels = append(b.kernels, k)
		b.trans = append(b.trans, nil)
		return s
	}
	add([]item{{prod: 0}})
	for s := 0; s < len(b.kernels); s++ {
		groups := make(map[symbol][]item)
		for _, it := range b.closure0(b.kernels[s]) {
			if x, ok := b.next(it); ok {
				groups[x] = append(groups[x], item{prod: it.prod, dot: it.dot + 1})
			}
		}
		syms := make([]symbol, 0, len(groups))
		for x := range groups {
			syms = append(syms, x)
		}
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
		b.trans[s] = make(map[symbol]int, len(syms))
		for _, x := range syms {
			b.trans[s][x] = add(groups[x])
		}
	}
}

// closure1 带向前看集合的 LR(1) 闭包，集合中下标 nterm 表示传播标记
func (b *builder) closure1(seed map[item]bitset) map[item]bitset {
	out := make(map[item]bitset, len(seed))
	var work []item
	for it, la := range seed {
		out[it] = la.clone()
		work = append(work, it)
	}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		s, ok := b.next(it)
		if !ok || b.isTerm(s) {
			continue
		}
		la := newBitset(b.nterm + 1)
		if b.firstOf(b.prods[it.prod].rhs[it.dot+1:], la) {
			la.union(out[it])
		}
		for _, p := range b.byLhs[int(s)-b.nterm] {
			nit := item{prod: p}
			cur, ok := out[nit]
			if !ok {
				out[nit] = la.clone()
				work = append(work, nit)
				continue
			}
			if cur.union(la) {
				work = append(work, nit)
			}
		}
	}
	return out
}

type kernelRef struct {
	state int
	idx   int
}

// lookaheads 用自发生成和传播的方法计算每个内核项目的向前看集合
func (b *builder) lookaheads() [][]bitset {
	hash := b.nterm
	la := make([][]bitset, len(b.kernels))
	pos := make([]map[item]int, len(b.kernels))
	for s, k := range b.kernels {
		la[s] = make([]bitset, len(k))
		pos[s] = make(map[item]int, len(k))
		for i, it := range k {
			la[s][i] = newBitset(b.nterm + 1)
			pos[s][it] = i
		}
	}
	la[0][0].add(int(lexer.TOKEN_EOF))

	propagate := make(map[kernelRef][]kernelRef)
	for s, k := range b.kernels {
		for i, kit := range k {
			seed := newBitset(b.nterm + 1)
			seed.add(hash)
			for it, set := range b.closure1(map[item]bitset{kit: seed}) {
				x, ok := b.next(it)
				if !ok {
					continue
				}
				t := b.trans[s][x]
				dst := kernelRef{t, pos[t][item{prod: it.prod, dot: it.dot + 1}]}
				set.each(func(a int) {
					if a == hash {
						propagate[kernelRef{s, i}] = append(propagate[kernelRef{s, i}], dst)
					} else {
						la[dst.state][dst.idx].add(a)
					}
				})
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for s, k := range b.kernels {
			for i := range k {
				for _, dst := range propagate[kernelRef{s, i}] {
					if la[dst.state][dst.idx].union(la[s][i]) {
						changed = true
					}
				}
			}
		}
	}
	return la
}

// tables 由内核项目及其向前看集合填写 ACTION/GOTO 表
func (b *builder) tables(la [][]bitset) *Table {
	n := len(b.kernels)
	t := &Table{
		names:         b.names,
		prods:         b.prods,
		nterm:         b.nterm,
		nnonterm:      b.nnonterm,
		nstates:       n,
		action:        make([]int32, n*b.nterm),
		gotos:         make([]int32, n*b.nnonterm),
		defaultReduce: make([]int32, n),
	}
	for s, k := range b.kernels {
		seed := make(map[item]bitset, len(k))
		for i, it := range k {
			seed[it] = la[s][i]
		}
		closure := b.closure1(seed)

		row := t.action[s*b.nterm : (s+1)*b.nterm]
		shifts := false
		for x, target := range b.trans[s] {
			if b.isTerm(x) {
				row[x] = int32(target + 1)
				shifts = true
			} else {
				t.gotos[s*b.nnonterm+int(x)-b.nterm] = int32(target + 1)
			}
		}

		var reduces []item
		for it := range closure {
			if _, ok := b.next(it); !ok {
				reduces = append(reduces, it)
			}
		}
		sort.Slice(reduces, func(i, j int) bool { return reduces[i].prod < reduces[j].prod })

		distinct := make(map[int]bool)
		for _, it := range reduces {
			closure[it].each(func(a int) {
				if a == b.nterm {
					return
				}
				want := int32(-(it.prod + 1))
				switch cur := row[a]; {
				case cur == 0:
					row[a] = want
					distinct[it.prod] = true
				case cur > 0:
					t.Conflicts = append(t.Conflicts, Conflict{
						State: s, Symbol: b.names[a], Kind: "shift/reduce",
						Chosen: "shift", Rejected: b.prods[it.prod].text,
					})
				default:
					t.Conflicts = append(t.Conflicts, Conflict{
						State: s, Symbol: b.names[a], Kind: "reduce/reduce",
						Chosen: b.prods[-cur-1].text, Rejected: b.prods[it.prod].text,
					})
				}
			})
		}
		if !shifts && len(distinct) == 1 {
			for p := range distinct {
				if p != 0 {
					t.defaultReduce[s] = int32(p + 1)
				}
			}
		}
	}
	return t
}
