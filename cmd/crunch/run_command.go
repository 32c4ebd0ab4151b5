package main

import (
	"bufio"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crunch/internal/batch"
	"crunch/internal/history"
	"crunch/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run [input-dir] [output-dir]",
		Short: "Convert every MP4 under a folder to MPEG-2 360p",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var prompter *bufio.Reader
			if isInteractive(cmd.InOrStdin()) {
				prompter = bufio.NewReader(cmd.InOrStdin())
			}
			inputDir, err := resolveInputDir(cmd.OutOrStdout(), args, prompter)
			if err != nil {
				return err
			}
			outputDir, err = resolveOutputDir(cmd.OutOrStdout(), args, outputDir, prompter)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			var opts []batch.Option
			if cfg.History.Enabled {
				store, err := history.Open(cfg)
				if err != nil {
					logger.Warn("run history unavailable", logging.Error(err))
				} else {
					defer store.Close()
					opts = append(opts, batch.WithHistory(store))
				}
			}

			runner := batch.New(cfg, logger, opts...)
			report, err := runner.Run(signalCtx, inputDir, outputDir)
			pause := func() { pauseBeforeExit(cmd.InOrStdin(), cmd.OutOrStdout()) }
			if err != nil {
				pause()
				return err
			}

			if report.TotalFiles > 0 {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderReportTable(report, out))
			}
			pause()
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to "+batch.DefaultOutputDirName+" inside the input folder)")
	return cmd
}

// resolveInputDir takes the input folder from the arguments or, when run from
// an interactive shell, prompts for it. Surrounding quotes from drag-and-drop
// paste are stripped either way. A nil prompter means stdin is not a terminal.
func resolveInputDir(out io.Writer, args []string, prompter *bufio.Reader) (string, error) {
	if len(args) > 0 {
		dir := stripQuotes(args[0])
		if dir == "" {
			return "", fmt.Errorf("input directory is required")
		}
		return dir, nil
	}
	if prompter == nil {
		return "", fmt.Errorf("input directory is required")
	}
	line, err := promptLine(out, prompter, "Enter the path to the folder containing MP4 files: ")
	if err != nil {
		return "", fmt.Errorf("read input directory: %w", err)
	}
	if line == "" {
		return "", fmt.Errorf("input directory is required")
	}
	return line, nil
}

// resolveOutputDir takes the output folder from the --output flag or the
// second argument; with neither, an interactive shell is prompted, where an
// empty answer selects the default subdirectory next to the input.
func resolveOutputDir(out io.Writer, args []string, flagValue string, prompter *bufio.Reader) (string, error) {
	if dir := stripQuotes(flagValue); dir != "" {
		return dir, nil
	}
	if len(args) > 1 {
		return stripQuotes(args[1]), nil
	}
	if prompter == nil {
		return "", nil
	}
	line, err := promptLine(out, prompter,
		"Enter the output folder (leave empty for "+batch.DefaultOutputDirName+" inside the input folder): ")
	if err != nil {
		return "", fmt.Errorf("read output directory: %w", err)
	}
	return line, nil
}

// promptLine prints the prompt, reads one line, and strips surrounding
// quotes. EOF with no input is an error; EOF after input is not.
func promptLine(out io.Writer, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return stripQuotes(line), nil
}

func renderReportTable(report *batch.Report, dest io.Writer) string {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Total files", fmt.Sprintf("%d", report.TotalFiles)},
		{"Succeeded", fmt.Sprintf("%d", report.SuccessCount)},
		{"Failed", fmt.Sprintf("%d", report.FailedCount)},
		{"Skipped", fmt.Sprintf("%d", report.SkippedCount)},
		{"Elapsed", report.Elapsed.Round(time.Second).String()},
		{"Input size", formatMB(report.TotalInputBytes)},
		{"Output size", formatMB(report.TotalOutputBytes)},
		{"Space saved", fmt.Sprintf("%s (%.1f%%)", formatMB(report.SavingsBytes()), report.SavingsPercent())},
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}, dest)
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}
