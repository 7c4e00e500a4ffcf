package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// newSubtitleCmd creates the subtitle command tree
func newSubtitleCmd() *cobra.Command {
	subtitleCmd := &cobra.Command{
		Use:   "subtitle",
		Short: "Clip subtitle operations",
		Long:  `Generate, edit, confirm and export the subtitle track of extracted clips.`,
	}

	subtitleCmd.AddCommand(newSubtitleGenerateCmd())
	subtitleCmd.AddCommand(newSubtitleGetCmd())
	subtitleCmd.AddCommand(newSubtitleEditCmd())
	subtitleCmd.AddCommand(newSubtitleConfirmCmd())
	subtitleCmd.AddCommand(newSubtitleExportCmd())

	return subtitleCmd
}

func newSubtitleGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [CLIP_ID]",
		Short: "Generate a draft subtitle track for a clip",
		Long: `Build clip-relative subtitle segments from the refined sentences spoken
inside the clip range. Any existing track for the clip is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := app.Subtitle.GenerateDraft(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✅ Draft subtitle generated!\n")
			printSubtitle(s)
			return nil
		},
	}
}

func newSubtitleGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [CLIP_ID]",
		Short: "Get the subtitle track of a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := app.Subtitle.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(s)
			}
			printSubtitle(s)
			return nil
		},
	}

	getCmd.Flags().StringP("format", "f", "text", "Output format: text, json")

	return getCmd
}

func newSubtitleEditCmd() *cobra.Command {
	editCmd := &cobra.Command{
		Use:   "edit [CLIP_ID]",
		Short: "Replace subtitle segments from a JSON file",
		Long: `Replace the clip's subtitle segments with the contents of a JSON file of
the form [{"index":0,"lines":["…"],"start_seconds":0,"end_seconds":2.5},…].
Editing a confirmed track reverts it to draft.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read segments file: %w", err)
			}
			var segments []model.SubtitleSegment
			if err := json.Unmarshal(data, &segments); err != nil {
				return fmt.Errorf("failed to parse segments file: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := app.Subtitle.UpdateSegments(ctx, args[0], segments)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Subtitle updated (status: %s)\n", s.Status)
			printSubtitle(s)
			return nil
		},
	}

	editCmd.Flags().StringP("file", "F", "", "JSON file with the replacement segments")
	editCmd.MarkFlagRequired("file")

	return editCmd
}

func newSubtitleConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm [CLIP_ID]",
		Short: "Confirm the draft subtitle track of a clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := app.Subtitle.Confirm(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✅ Subtitle confirmed for clip '%s'.\n", s.ClipID)
			return nil
		},
	}
}

func newSubtitleExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [CLIP_ID]",
		Short: "Export the subtitle track as SRT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			includeDraft, _ := cmd.Flags().GetBool("draft")
			output, _ := cmd.Flags().GetString("output")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			srt, err := app.Subtitle.ExportSRT(ctx, args[0], includeDraft)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Print(srt)
				return nil
			}
			if err := os.WriteFile(output, []byte(srt), 0644); err != nil {
				return fmt.Errorf("failed to write SRT file: %w", err)
			}
			fmt.Printf("✅ SRT written to %s\n", output)
			return nil
		},
	}

	exportCmd.Flags().BoolP("draft", "d", false, "Allow exporting an unconfirmed draft track")
	exportCmd.Flags().StringP("output", "o", "", "Write SRT to a file instead of stdout")

	return exportCmd
}
