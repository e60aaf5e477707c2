//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/batlog/summary"
	"github.com/himanishpuri/BatLog/pkg/utils"
	"github.com/spf13/cobra"
)

func matchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match <comment...>",
		Short: "Show which species a comment names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			comment := strings.Join(args, " ")
			matches, err := svc.MatchComment(comment)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "❌ No species found")
				return nil
			}
			fmt.Fprintf(out, "✅ Found %d species:\n", len(matches))
			for i, m := range matches {
				fmt.Fprintf(out, "%d. %s (%s) via %q at offset %d\n",
					i+1, m.Species.DisplayName(), m.Species.Binomial(), m.Tag, m.Offset)
			}
			return nil
		},
	}
}

func summarizeCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "summarize <file-or-folder...>",
		Short: "Summarize label files into a species report",
		Long: `Summarize label files into a species report.

Folders are searched recursively for label files; files already produced by
batlog (*.log.txt) are ignored. Without --output the report is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			report, err := summarizeArgs(cmd.Context(), svc, args)
			if err != nil {
				return err
			}
			for _, f := range report.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s: %v\n", f.Path, f.Err)
			}
			return emitReport(cmd, report, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write <base>.log.txt and <base>.manifest instead of printing")
	return cmd
}

// summarizeArgs expands folders into their label files, keeping argument order.
func summarizeArgs(ctx context.Context, svc batlog.Service, args []string) (*summary.BatchReport, error) {
	if len(args) == 1 {
		if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
			return svc.SummarizeFolder(ctx, args[0])
		}
	}

	var paths []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, arg)
			continue
		}
		for path, err := range utils.WalkLabelFiles(arg) {
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return svc.SummarizeFiles(ctx, paths)
}

// emitReport prints the report, or writes the log and manifest next to base.
func emitReport(cmd *cobra.Command, report *summary.BatchReport, base string) error {
	if base == "" {
		printLines(cmd.OutOrStdout(), report.Lines())
		return nil
	}
	logPath, manifestPath, err := summary.WriteOutputs(report, base)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Summarized %s, %s skipped, %s species\n",
		plural(len(report.Files), "file"),
		humanize.Comma(int64(len(report.Skipped))),
		humanize.Comma(int64(report.Totals.Len())))
	fmt.Fprintf(out, "   Report:   %s (%s)\n", logPath, fileSize(logPath))
	fmt.Fprintf(out, "   Manifest: %s\n", manifestPath)
	return nil
}

func printLines(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

func fileSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(fi.Size()))
}
