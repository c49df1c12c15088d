// Package cli defines the cbnr command line: a flat cobra command that
// concatenates delimited tabular inputs and emits TSV.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scbirlab/cbnr/internal/convert"
	"github.com/scbirlab/cbnr/internal/ui"
	"github.com/scbirlab/cbnr/table"
)

const longDescription = `Read tabular files in CSV or TSV format (or standard
input when no files are given), concatenate them in argument order, and
write the combined table as TSV to the output (standard output by default).

Inputs compressed with gzip (.gz, .gzip) are decompressed on the fly.
Datasets with differing columns are merged as a union, with missing values
left empty.`

// Execute runs the root command, printing any failure to stderr.
func Execute(version, commit, date string) error {
	cmd := NewRootCommand(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewRootCommand builds the cbnr command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	var (
		formatName  string
		output      string
		quiet       bool
		interactive bool
		format      table.Format
	)

	cmd := &cobra.Command{
		Use:           "cbnr [inputs ...]",
		Short:         "Concatenate CSV/TSV files and write TSV",
		Long:          longDescription,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Reject bad formats before touching any file. The flag takes
			// only the exact names TSV and CSV (case-insensitive); the
			// extension aliases understood by table.Sniff do not apply here.
			switch strings.ToLower(formatName) {
			case "tsv":
				format = table.TSV
			case "csv":
				format = table.CSV
			default:
				return fmt.Errorf("invalid value %q for --format: must be TSV or CSV", formatName)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return ui.Run()
			}

			logger := newLogger(quiet)
			defer func() { _ = logger.Sync() }()

			start := time.Now()
			logger.Infof("🚀 Converting with the following parameters:\n\tformat: %s\n\toutput: %s\n\tinputs: %s",
				format, sinkName(output), sourceName(args))

			progressChan, wait := progressSink(quiet, os.Stderr)
			res, err := convert.Convert(args, format, cmd.InOrStdin(), sink(cmd, output), progressChan)
			if progressChan != nil {
				close(progressChan)
				wait()
			}
			if err != nil {
				if errors.Is(err, syscall.EPIPE) {
					// Downstream closed the pipe (e.g. piped into head).
					return nil
				}
				return err
			}

			logger.Infof("Wrote %d row(s), %d column(s) from %d input(s)",
				res.RowsWritten, len(res.Columns), res.InputsRead)
			logger.Infof("⏰ Completed cbnr in %s", time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "TSV",
		"format of all inputs: TSV or CSV, case-insensitive")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output file (default: STDOUT)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress parameter reporting and progress")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"pick and convert a file in a terminal UI")

	return cmd
}

func sink(cmd *cobra.Command, output string) convert.OpenSink {
	return func() (io.WriteCloser, error) {
		if output == "" {
			return nopWriteCloser{cmd.OutOrStdout()}, nil
		}
		return os.Create(output)
	}
}

func sinkName(output string) string {
	if output == "" {
		return "STDOUT"
	}
	return output
}

func sourceName(inputs []string) string {
	if len(inputs) == 0 {
		return "STDIN"
	}
	return strings.Join(inputs, ", ")
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// progressSink renders conversion progress, fed by the converter's
// progress channel. The bar only renders when w is a terminal, so
// redirected stderr stays free of control sequences. The returned func
// blocks until the bar has drained after the channel is closed.
func progressSink(quiet bool, w io.Writer) (chan float64, func()) {
	f, isFile := w.(*os.File)
	if quiet || !isFile || !isatty.IsTerminal(f.Fd()) {
		return nil, func() {}
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionClearOnFinish(),
	)
	ch := make(chan float64, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range ch {
			_ = bar.Set(int(p * 100))
		}
		_ = bar.Finish()
	}()
	return ch, func() { <-done }
}

// newLogger builds a console logger on stderr, without timestamps so the
// output reads like a normal CLI status line.
func newLogger(quiet bool) *zap.SugaredLogger {
	if quiet {
		return zap.NewNop().Sugar()
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      zapcore.OmitKey,
		TimeKey:       zapcore.OmitKey,
		NameKey:       zapcore.OmitKey,
		CallerKey:     zapcore.OmitKey,
		StacktraceKey: zapcore.OmitKey,
		LineEnding:    zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	return zap.New(core).Sugar()
}
