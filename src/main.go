package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"alanc/src/backend/llvm"
	"alanc/src/config"
	"alanc/src/frontend"
	"alanc/src/ir"
	"alanc/src/util"
)

const appVersion = "1.0.0"

func main() {
	app := cli.NewApp()
	app.Name = "alanc"
	app.Usage = "compiler for the Alan programming language"
	app.Version = appVersion
	app.ArgsUsage = "[source file]"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "output, o", Usage: "write the emitted module to `FILE` instead of stdout"},
		cli.StringFlag{Name: "config, c", Usage: "load compiler configuration from YAML `FILE`"},
		cli.StringFlag{Name: "module", Usage: "override the emitted module `NAME`"},
		cli.BoolFlag{Name: "verbose, v", Usage: "log compiler stage statistics to stderr"},
		cli.BoolFlag{Name: "dump-ast", Usage: "print the analyzed syntax tree to stderr"},
		cli.BoolFlag{Name: "tokens", Usage: "output the token stream of the source code and exit"},
	}
	app.Action = compile

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// compile runs the compiler stages: read, parse, semantic analysis with call
// fix up, and LLVM code generation. The first diagnostic terminates the
// process with exit code 1.
func compile(c *cli.Context) error {
	opt := util.Options{
		Src:     c.Args().First(),
		Out:     c.String("output"),
		Module:  c.String("module"),
		Verbose: c.Bool("verbose"),
		DumpAST: c.Bool("dump-ast"),
		Tokens:  c.Bool("tokens"),
	}
	if path := c.String("config"); len(path) > 0 {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg.Apply(&opt)
	}

	log := newLogger(opt.Verbose)
	defer func() {
		_ = log.Sync()
	}()

	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %w", err)
	}

	if opt.Tokens {
		ts, err := frontend.TokenStream(src)
		if err != nil {
			diagnostic(opt, err)
		}
		fmt.Print(ts)
		return nil
	}

	start := time.Now()
	root, err := frontend.Parse(src)
	if err != nil {
		diagnostic(opt, err)
	}
	log.Debug("parsed", zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	if err := ir.Semantic(root, log); err != nil {
		diagnostic(opt, err)
	}
	log.Debug("analyzed", zap.Duration("elapsed", time.Since(start)))

	if opt.DumpAST {
		fmt.Fprint(os.Stderr, ir.Dump(root, 0))
	}

	start = time.Now()
	module, err := llvm.Codegen(opt, root)
	if err != nil {
		diagnostic(opt, err)
	}
	log.Debug("emitted", zap.Duration("elapsed", time.Since(start)))

	return util.WriteOutput(opt, module)
}

// diagnostic prints a compile error in the canonical shape and terminates.
func diagnostic(opt util.Options, err error) {
	if ce, ok := err.(*ir.CompileError); ok {
		fmt.Fprintln(os.Stderr, ce.Diagnostic(opt.SourceName()))
	} else {
		fmt.Fprintf(os.Stderr, "%s: Error, %s\n", opt.SourceName(), err)
	}
	os.Exit(1)
}

// newLogger builds the stderr console logger. Debug level statistics only
// show up in verbose mode.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
