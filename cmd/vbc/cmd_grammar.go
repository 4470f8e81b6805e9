package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tangzhangming/vbc/internal/i18n"
	"github.com/tangzhangming/vbc/internal/parser"
)

// grammarCmd 生成 LALR(1) 分析表并输出统计信息
func grammarCmd(args []string) {
	fs := flag.NewFlagSet("grammar", flag.ExitOnError)
	verbose := fs.Bool("v", false, i18n.T(i18n.MsgCheckOptVerbose))
	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgGrammarUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgGrammarDescription))
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	t := parser.Tables()
	printInfo(i18n.T(i18n.MsgGrammarStats, t.Productions(), t.States(), t.Terminals(), t.Nonterminals()))
	if len(t.Conflicts) > 0 {
		printInfo(i18n.T(i18n.MsgGrammarConflicts, len(t.Conflicts)))
		if *verbose {
			for _, c := range t.Conflicts {
				printInfo("  " + c.String())
			}
		}
	}
}
