package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newVideoCmd creates the video command tree
func newVideoCmd() *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Source video operations",
		Long:  `Submit source videos and drive them through the transcription pipeline.`,
	}

	videoCmd.AddCommand(newVideoSubmitCmd())
	videoCmd.AddCommand(newVideoProcessCmd())
	videoCmd.AddCommand(newVideoReprocessCmd())
	videoCmd.AddCommand(newVideoGetCmd())
	videoCmd.AddCommand(newVideoURLCmd())
	videoCmd.AddCommand(newVideoListCmd())
	videoCmd.AddCommand(newVideoDeleteCmd())

	return videoCmd
}

func newVideoSubmitCmd() *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit [SOURCE_FILE_ID]",
		Short: "Register a source video for processing",
		Long:  `Register a file from the origin store as a pending video.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := app.Video.Submit(ctx, args[0], title)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Video submitted successfully!\n")
			printVideo(v)
			return nil
		},
	}

	submitCmd.Flags().StringP("title", "t", "", "Title for the video (defaults to the origin file name)")

	return submitCmd
}

func newVideoProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process [VIDEO_ID]",
		Short: "Run the transcription pipeline for a video",
		Long: `Materialize the source, extract audio, transcribe it and refine the
transcript. Progress is persisted at every stage; poll with 'video get'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Transcription of long videos can take a while
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := app.Video.Process(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✅ Video processed successfully!\n")
			printVideo(v)
			return nil
		},
	}
}

func newVideoReprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess [VIDEO_ID]",
		Short: "Re-run the pipeline for a completed or failed video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := app.Video.Reprocess(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✅ Video reprocessed successfully!\n")
			printVideo(v)
			return nil
		},
	}
}

func newVideoGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [VIDEO_ID]",
		Short: "Get video by ID",
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

			v, err := app.Video.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(v)
			}
			printVideo(v)
			return nil
		},
	}

	getCmd.Flags().StringP("format", "f", "text", "Output format: text, json")

	return getCmd
}

func newVideoURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url [VIDEO_ID]",
		Short: "Issue a signed read URL for the cached video",
		Long: `Materialize the video into the cache tier if needed and print a
time-limited signed URL for reading it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Materialization may have to copy the source into the cache
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := app.Video.Get(ctx, args[0])
			if err != nil {
				return err
			}
			url, err := app.Blobs.IssueReadURL(ctx, v)
			if err != nil {
				return err
			}

			fmt.Println(url)
			return nil
		},
	}
}

func newVideoListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			videos, err := app.Video.List(ctx, status, limit, offset)
			if err != nil {
				return err
			}

			if len(videos) == 0 {
				fmt.Println("No videos found.")
				return nil
			}

			fmt.Printf("Videos (%d found):\n\n", len(videos))
			for _, v := range videos {
				printVideo(v)
				fmt.Println("---")
			}
			return nil
		},
	}

	listCmd.Flags().StringP("status", "s", "", "Filter by status (pending, processing, transcribing, transcribed, extracting, completed, failed)")
	listCmd.Flags().IntP("limit", "l", 20, "Maximum number of videos to list")
	listCmd.Flags().IntP("offset", "o", 0, "Number of videos to skip")

	return listCmd
}

func newVideoDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete [VIDEO_ID]",
		Short: "Delete video by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				fmt.Printf("Are you sure you want to delete video '%s'? [y/N]: ", args[0])
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Deletion cancelled.")
					return nil
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := app.Video.Delete(ctx, args[0]); err != nil {
				return err
			}

			fmt.Printf("✅ Video '%s' deleted successfully.\n", args[0])
			return nil
		},
	}

	deleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return deleteCmd
}
