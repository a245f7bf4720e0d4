package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"autosub/internal/subtitles"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var baseName string
	var profile string

	cmd := &cobra.Command{
		Use:   "transcribe <transcript.json|yaml>",
		Short: "Chunk recognizer output with word timings into a subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.subtitleService()
			if err != nil {
				return err
			}
			result, err := svc.Generate(runContext(cmd), subtitles.GenerateRequest{
				TranscriptPath: args[0],
				OutputDir:      outputDir,
				BaseName:       baseName,
				Profile:        profile,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, keyValueTable([][2]string{
				{"Subtitles", result.SubtitlePath},
				{"Profile", fmt.Sprintf("%s (%s)", result.Profile, result.ProfileSource)},
				{"Avg segment", strconv.FormatFloat(result.Pacing.AvgDuration, 'f', 2, 64) + "s"},
				{"Avg gap", strconv.FormatFloat(result.Pacing.AvgGap, 'f', 2, 64) + "s"},
				{"Blocks", strconv.Itoa(result.Blocks)},
				{"Words", strconv.Itoa(result.Words)},
				{"Untimed words", strconv.Itoa(result.DroppedWords)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&baseName, "name", "", "Base name for the subtitle file")
	cmd.Flags().StringVar(&profile, "profile", "", "Chunking profile: auto, formal or spoken")
	return cmd
}
