// Command nsc is the New Solar compiler front end's CLI driver (spec.md
// §6): it reads one or more `.ns` source files, runs each through
// lex→parse→build-symbols→check→codegen, and writes a `.s` stub per
// input file into the output directory. Exit code is 0 iff every file
// succeeded.
//
// Grounded on Consensys-go-corset/pkg/cmd/root.go's cobra root-command
// shape (a `Run` closure reading flags off the cobra.Command) and
// pkg/cmd/debug.go's logrus verbosity wiring (`log.SetLevel` gated on a
// `--verbose`-style flag), adapted from the teacher's constraint-file
// toolbox to this module's strict one-file-at-a-time compiler pipeline.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Juhaziel/New-Solar-Language/internal/codegen"
	"github.com/Juhaziel/New-Solar-Language/internal/config"
	"github.com/Juhaziel/New-Solar-Language/internal/diag"
	"github.com/Juhaziel/New-Solar-Language/internal/lexer"
	"github.com/Juhaziel/New-Solar-Language/internal/parser"
	"github.com/Juhaziel/New-Solar-Language/internal/sem"
	"github.com/Juhaziel/New-Solar-Language/internal/symtab"
)

var rootCmd = &cobra.Command{
	Use:   "nsc [flags] file.ns...",
	Short: "New Solar compiler front end",
	Long:  "nsc lexes, parses, builds symbols for, and checks New Solar source files, emitting a stub assembly file per input.",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringP("dir", "d", ".", "output directory")
	rootCmd.Flags().Bool("debug", false, "maximum verbosity (debug level and above)")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose output (info level and above)")
	rootCmd.Flags().Bool("woff", false, "suppress warnings (error level and above only)")
	rootCmd.Flags().StringArrayP("feature", "f", nil, "reserved option, unused by the core")
	rootCmd.MarkFlagsMutuallyExclusive("debug", "verbose", "woff")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Usage()
	}
	dir, _ := cmd.Flags().GetString("dir")
	debugFlag, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	woff, _ := cmd.Flags().GetBool("woff")

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{DisableColors: !isTTY, FullTimestamp: false})
	switch {
	case debugFlag:
		logger.SetLevel(log.DebugLevel)
	case verbose:
		logger.SetLevel(log.InfoLevel)
	case woff:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	cfg := config.Default()
	anyFailed := false

	for _, path := range args {
		if !compileFile(path, dir, cfg, logger) {
			anyFailed = true
		}
	}
	if anyFailed {
		return fmt.Errorf("one or more files failed to compile")
	}
	return nil
}

// compileFile runs the full pipeline for one source file, reporting every
// diagnostic through logger, and returns whether it succeeded.
func compileFile(path, outDir string, cfg config.Config, logger *log.Logger) (ok bool) {
	sink := diag.NewSink(path)
	defer emitDiagnostics(sink, logger)

	completed := sink.Run(func() {
		src, err := os.ReadFile(path)
		if err != nil {
			sink.Fatalf(diag.Pos{}, "L00", "cannot read %s: %v", path, err)
		}

		toks := lexer.New(src, cfg, sink).Lex()
		if sink.HasErrors() {
			return
		}

		mod := parser.New(toks, sink).Parse()
		if sink.HasErrors() {
			return
		}

		table := symtab.Build(mod, sink)
		if sink.HasErrors() {
			return
		}

		sem.Check(mod, table, cfg, sink)
		if sink.HasErrors() {
			return
		}

		outPath := outputPath(path, outDir)
		out, err := os.Create(outPath)
		if err != nil {
			sink.Fatalf(diag.Pos{}, "L00", "cannot create %s: %v", outPath, err)
		}
		defer out.Close()
		if err := (codegen.Stub{}).Generate(out, mod, table, cfg); err != nil {
			sink.Fatalf(diag.Pos{}, "L00", "cannot write %s: %v", outPath, err)
		}
	})

	return completed && sink.Success()
}

// outputPath maps an input `foo.ns` to `DIR/foo.s` (spec.md §6).
func outputPath(inPath, outDir string) string {
	base := filepath.Base(inPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".s"
	return filepath.Join(outDir, base)
}

func emitDiagnostics(sink *diag.Sink, logger *log.Logger) {
	for _, d := range sink.Msgs {
		entry := logger.WithFields(log.Fields{"code": d.Code, "file": d.File, "pos": d.Pos.String()})
		switch d.Level {
		case diag.Debug:
			entry.Debug(d.Text)
		case diag.Info:
			entry.Info(d.Text)
		case diag.Warn:
			entry.Warn(d.Text)
		case diag.Error, diag.Fatal:
			entry.Error(d.Text)
		}
	}
}
