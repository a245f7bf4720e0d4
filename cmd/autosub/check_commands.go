package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"autosub/internal/services"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <translated.srt|dir>",
		Short: "Check translated subtitles or chunk directories for leftovers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			result, err := svc.Validate(runContext(cmd), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.OK() {
				fmt.Fprintf(out, "%s: %d files, %d blocks checked\n", statusText(out, true, "OK", ""), result.Files, result.Blocks)
				return nil
			}
			rows := make([][]string, 0, len(result.Issues))
			for _, issue := range result.Issues {
				block := "-"
				if issue.Block > 0 {
					block = strconv.Itoa(issue.Block)
				}
				rows = append(rows, []string{filepath.Base(issue.File), block, issue.Kind, issue.Text})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Block", "Problem", "Text"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return services.Wrap(services.ErrValidation, "validate", "Check subtitles",
				fmt.Sprintf("%d issues found", len(result.Issues)), nil)
		},
	}
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <source.srt> <translated.srt>",
		Short: "Compare block counts and durations of two tracks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			cmp, err := svc.Compare(runContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Track", "Blocks", "Duration"},
				[][]string{
					{filepath.Base(args[0]), strconv.Itoa(cmp.SourceBlocks), fmt.Sprintf("%.1fs", cmp.SourceDuration)},
					{filepath.Base(args[1]), strconv.Itoa(cmp.TranslatedBlocks), fmt.Sprintf("%.1fs", cmp.TranslatedDuration)},
				},
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Block counts: %s\n", statusText(out, !cmp.CountMismatch, "match", "differ"))
			fmt.Fprintf(out, "Durations: %s\n", statusText(out, !cmp.DurationMismatch, "match", "differ"))
			return nil
		},
	}
}
