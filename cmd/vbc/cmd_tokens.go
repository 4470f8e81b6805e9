package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tangzhangming/vbc/internal/config"
	"github.com/tangzhangming/vbc/internal/diag"
	"github.com/tangzhangming/vbc/internal/i18n"
	"github.com/tangzhangming/vbc/internal/lexer"
	"github.com/tangzhangming/vbc/internal/preproc"
)

// tokensCmd 输出条件编译之后语法分析器看到的 token 流
func tokensCmd(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	define := fs.String("d", "", i18n.T(i18n.MsgCheckOptDefine))

	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgTokensUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgTokensDescription))
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		printError(i18n.T(i18n.ErrInputRequired))
		fs.Usage()
		os.Exit(1)
	}

	if err := printTokens(fs.Arg(0), *define); err != nil {
		printError("Error: " + err.Error())
		os.Exit(1)
	}
}

func printTokens(path, define string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return &readFileError{path: path, err: err}
	}
	cfg, _, err := config.FindAndLoad(filepath.Dir(path))
	if err != nil {
		return &configError{err: err}
	}
	defines, err := cfg.DefineValues()
	if err != nil {
		return &configError{err: err}
	}
	extra, err := parseDefines(define)
	if err != nil {
		return err
	}
	for name, v := range extra {
		defines[name] = v
	}

	bag := diag.NewBag()
	l := lexer.NewWithOptions(string(text), lexer.Options{File: path, Defines: defines, Sink: bag})
	for l.Advance() {
		tok := l.Current()
		switch tok.Type {
		case lexer.TOKEN_EOL:
			fmt.Printf("%d:%d\t%s\n", tok.Line, tok.Column, tok.Type)
		default:
			fmt.Printf("%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		}
	}

	var perr *preproc.Error
	if errors.As(l.Err(), &perr) {
		perr.Report(bag)
	}
	if _, err := bag.WriteTo(os.Stdout); err != nil {
		return err
	}
	return nil
}
