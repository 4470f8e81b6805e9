package convert

// doubleHash 两级键的查找表，按 (源类型, 目标类型) 缓存运算符查找结果。
// 缓存的 nil 值表示已查找过但不存在。
type doubleHash[K1, K2 comparable, V any] struct {
	m map[K1]map[K2]V
}

func newDoubleHash[K1, K2 comparable, V any]() *doubleHash[K1, K2, V] {
	return &doubleHash[K1, K2, V]{m: make(map[K1]map[K2]V)}
}

// Lookup 查找 (a, b)，第二个返回值表示是否命中
func (h *doubleHash[K1, K2, V]) Lookup(a K1, b K2) (V, bool) {
	inner, ok := h.m[a]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := inner[b]
	return v, ok
}

// Insert 记录 (a, b) 的结果
func (h *doubleHash[K1, K2, V]) Insert(a K1, b K2, v V) {
	inner, ok := h.m[a]
	if !ok {
		inner = make(map[K2]V)
		h.m[a] = inner
	}
	inner[b] = v
}

// Len 缓存的条目数
func (h *doubleHash[K1, K2, V]) Len() int {
	n := 0
	for _, inner := range h.m {
		n += len(inner)
	}
	return n
}
