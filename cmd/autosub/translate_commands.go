package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"autosub/internal/gapfill"
	"autosub/internal/subtitles"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "split <subtitles.srt>",
		Short: "Write the source track and cut it into chunks for translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			result, err := svc.Split(runContext(cmd), subtitles.SplitRequest{
				InputPath: args[0],
				OutputDir: outputDir,
				ChunkSize: chunkSize,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][2]string{
				{"Source track", result.SourcePath},
				{"Bilingual input", yesNo(result.Bilingual)},
				{"Blocks", strconv.Itoa(result.Blocks)},
				{"Chunks", strconv.Itoa(len(result.Chunks))},
				{"Chunk directory", result.ChunkDir},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the input directory)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Blocks per chunk (defaults to merge.chunk_size)")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var req subtitles.MergeRequest

	cmd := &cobra.Command{
		Use:   "merge <source.srt> [translated.srt]",
		Short: "Align a translation onto the source timing and fill the gaps",
		Long: "Merge writes <base>.bi.srt. Without a translated file it uses <base>.<target>.srt\n" +
			"or the translated chunk files under <dir>/chunks.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			req.SourcePath = args[0]
			if len(args) == 2 {
				req.TranslatedPath = args[1]
			}
			result, err := svc.Merge(runContext(cmd), req)
			if err != nil {
				return err
			}

			diag := result.Diagnostics
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, keyValueTable([][2]string{
				{"Bilingual track", result.BilingualPath},
				{"Source", result.SourcePath},
				{"Translation", fmt.Sprintf("%s (%s)", result.TranslationPath, result.TranslationSource)},
				{"Blocks", fmt.Sprintf("%d source / %d translated", diag.SecondaryBlocks, diag.MasterBlocks)},
				{"Counts match", statusText(out, !diag.CountMismatch, "yes", "no")},
				{"Durations match", statusText(out, !diag.DurationMismatch, "yes", "no")},
				{"Untranslated", strconv.Itoa(diag.Untranslated)},
			}))
			if !req.SkipFill && diag.Untranslated > 0 {
				fmt.Fprintln(out, fillSummary(out, result.Fill))
				if result.Synced {
					fmt.Fprintln(out, "Translated track updated with filled lines")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.OutputDir, "output", "o", "", "Output directory (defaults to the source directory)")
	cmd.Flags().StringVar(&req.BaseName, "name", "", "Base name for the merged files")
	cmd.Flags().BoolVar(&req.EnglishTop, "english-top", false, "Place source lines above the translation")
	cmd.Flags().BoolVar(&req.SkipFill, "no-fill", false, "Leave untranslated blocks for a later fill run")
	return cmd
}

func newFillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <bilingual.srt>",
		Short: "Translate blocks still marked untranslated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			result, err := svc.Fill(runContext(cmd), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, fillSummary(out, result.Report))
			if result.Written {
				fmt.Fprintf(out, "Updated %s\n", result.Path)
			}
			return nil
		},
	}
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract <bilingual.srt>",
		Short: "Split a bilingual track into source and target tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			result, err := svc.ExtractTracks(runContext(cmd), args[0], outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][2]string{
				{"Source track", result.SourcePath},
				{"Target track", result.TargetPath},
				{"Blocks", strconv.Itoa(result.Blocks)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the input directory)")
	return cmd
}

func fillSummary(out io.Writer, report gapfill.Report) string {
	remaining := report.Remaining()
	pairs := [][2]string{
		{"Gaps", strconv.Itoa(report.Gaps)},
		{"Filled", strconv.Itoa(report.Patched)},
		{"From cache", strconv.Itoa(report.CacheHits)},
		{"Failed batches", strconv.Itoa(report.FailedBatches)},
		{"Remaining", statusText(out, remaining == 0, "none", strconv.Itoa(remaining))},
	}
	if report.Skipped {
		pairs = append(pairs, [2]string{"Note", "no llm.api_key configured; gaps were left in place"})
	}
	return keyValueTable(pairs)
}
