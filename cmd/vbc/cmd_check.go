package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tangzhangming/vbc/internal/compiler"
	"github.com/tangzhangming/vbc/internal/constant"
	"github.com/tangzhangming/vbc/internal/i18n"
)

type checkFlags struct {
	verbose bool
	strict  bool
	jobs    int
	defines map[string]constant.Value
}

// checkCmd 分析并检查源文件，每个输入作为独立项目并行编译
func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, i18n.T(i18n.MsgCheckOptVerbose))
	strict := fs.Bool("strict", false, i18n.T(i18n.MsgCheckOptStrict))
	define := fs.String("d", "", i18n.T(i18n.MsgCheckOptDefine))
	jobs := fs.Int("j", runtime.GOMAXPROCS(0), i18n.T(i18n.MsgCheckOptJobs))

	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgCheckUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgCheckDescription))
		fmt.Println()
		fmt.Println("Arguments:")
		fmt.Println(i18n.T(i18n.MsgCheckArgInput))
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		printError(i18n.T(i18n.ErrInputRequired))
		fs.Usage()
		os.Exit(1)
	}

	defines, err := parseDefines(*define)
	if err != nil {
		printError("Error: " + err.Error())
		os.Exit(1)
	}
	flags := &checkFlags{verbose: *verbose, strict: *strict, jobs: *jobs, defines: defines}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ok, err := checkInputs(ctx, fs.Args(), flags)
	if err != nil {
		printError("Error: " + err.Error())
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// checkInputs 依次加载项目后并行编译，按输入顺序输出诊断信息。
// 返回是否没有编译错误。
func checkInputs(ctx context.Context, inputs []string, flags *checkFlags) (bool, error) {
	projects := make([]*project, 0, len(inputs))
	for _, input := range inputs {
		p, err := loadProject(input, flags)
		if err != nil {
			return false, err
		}
		projects = append(projects, p)
	}
	applyLanguage(projects)

	if flags.verbose {
		printInfo(i18n.T(i18n.MsgCompiling, len(projects)))
	}

	results := make([]*compiler.Result, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	if flags.jobs > 0 {
		g.SetLimit(flags.jobs)
	}
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			res, err := compiler.Compile(gctx, p.options, p.sources)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	files, errs, warnings := 0, 0, 0
	for i, res := range results {
		files += len(projects[i].sources)
		errs += res.Diags.ErrorCount()
		warnings += res.Diags.WarningCount()
		if _, err := res.Diags.WriteTo(os.Stdout); err != nil {
			return false, err
		}
	}

	switch {
	case errs > 0:
		printError(i18n.T(i18n.MsgCheckFailed, errs, warnings))
		return false, nil
	case warnings > 0:
		printWarning(i18n.T(i18n.MsgCheckWarnings, warnings))
	default:
		printInfo(i18n.T(i18n.MsgCheckCompleted, files))
	}
	return true, nil
}

// applyLanguage 使用第一个配置了 language 的项目
func applyLanguage(projects []*project) {
	for _, p := range projects {
		if i18n.Configure(p.cfg.Compile.Language) {
			return
		}
	}
}
