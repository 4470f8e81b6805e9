package main

import (
	"fmt"
	"os"

	"github.com/tangzhangming/vbc/internal/i18n"
)

const version = "0.1.0"

func main() {
	// 初始化国际化
	i18n.Init()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		checkCmd(os.Args[2:])
	case "tokens":
		tokensCmd(os.Args[2:])
	case "grammar":
		grammarCmd(os.Args[2:])
	case "version":
		fmt.Println("vbc version", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		printError(i18n.T(i18n.MsgUnknownCommand, os.Args[1]))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(i18n.T(i18n.MsgUsage))
	fmt.Println()
	fmt.Println(i18n.T(i18n.MsgCommands))
	fmt.Println(i18n.T(i18n.MsgCmdCheck))
	fmt.Println(i18n.T(i18n.MsgCmdTokens))
	fmt.Println(i18n.T(i18n.MsgCmdGrammar))
	fmt.Println(i18n.T(i18n.MsgCmdVersion))
	fmt.Println(i18n.T(i18n.MsgCmdHelp))
	fmt.Println()
	fmt.Println(i18n.T(i18n.MsgUseHelp))
}

// 辅助打印函数
func printError(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

func printInfo(msg string) {
	fmt.Println(msg)
}

func printWarning(msg string) {
	fmt.Println("Warning:", msg)
}
