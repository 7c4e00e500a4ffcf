package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newClipCmd creates the clip command tree
func newClipCmd() *cobra.Command {
	clipCmd := &cobra.Command{
		Use:   "clip",
		Short: "Clip extraction operations",
		Long:  `Extract clips from transcribed videos, either from an explicit time range or from free-text instructions interpreted by the text model.`,
	}

	clipCmd.AddCommand(newClipCreateCmd())
	clipCmd.AddCommand(newClipAutoCmd())
	clipCmd.AddCommand(newClipGetCmd())
	clipCmd.AddCommand(newClipListCmd())
	clipCmd.AddCommand(newClipJobCmd())

	return clipCmd
}

func newClipCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create [VIDEO_ID]",
		Short: "Extract a clip from an explicit time range",
		Long: `Cut the given time range out of a transcribed video, upload the result
and derive a title and transcript excerpt from the refined sentences.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetFloat64("start")
			end, _ := cmd.Flags().GetFloat64("end")
			title, _ := cmd.Flags().GetString("title")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var titlePtr *string
			if title != "" {
				titlePtr = &title
			}

			c, err := app.Clip.ExtractClip(ctx, args[0], start, end, titlePtr)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Clip extraction finished!\n")
			printClip(c)
			return nil
		},
	}

	createCmd.Flags().Float64P("start", "s", 0, "Clip start time in seconds")
	createCmd.Flags().Float64P("end", "e", 0, "Clip end time in seconds")
	createCmd.Flags().StringP("title", "t", "", "Clip title (derived from the transcript when omitted)")
	createCmd.MarkFlagRequired("start")
	createCmd.MarkFlagRequired("end")

	return createCmd
}

func newClipAutoCmd() *cobra.Command {
	autoCmd := &cobra.Command{
		Use:   "auto [VIDEO_ID]",
		Short: "Extract clips selected by the text model",
		Long: `Send the refined transcript and free-text instructions to the text model,
then extract and upload every clip it proposes. One bad clip does not abort
the batch; each clip carries its own status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instructions, _ := cmd.Flags().GetString("instructions")

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			job, clips, err := app.Clip.ExtractClipsFromInstructions(ctx, args[0], instructions)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Clip extraction job finished!\n")
			printJob(job)
			fmt.Printf("\nClips (%d):\n", len(clips))
			for _, c := range clips {
				fmt.Println("---")
				printClip(c)
			}
			return nil
		},
	}

	autoCmd.Flags().StringP("instructions", "i", "", "Free-text extraction instructions for the text model")
	autoCmd.MarkFlagRequired("instructions")

	return autoCmd
}

func newClipGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [CLIP_ID]",
		Short: "Get clip by ID",
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

			c, err := app.Clip.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(c)
			}
			printClip(c)
			return nil
		},
	}

	getCmd.Flags().StringP("format", "f", "text", "Output format: text, json")

	return getCmd
}

func newClipListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [VIDEO_ID]",
		Short: "List clips for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			clips, err := app.Clip.ListByVideo(ctx, args[0])
			if err != nil {
				return err
			}

			if len(clips) == 0 {
				fmt.Printf("No clips found for video: %s\n", args[0])
				return nil
			}

			fmt.Printf("Clips for video %s (%d found):\n\n", args[0], len(clips))
			for _, c := range clips {
				printClip(c)
				fmt.Println("---")
			}
			return nil
		},
	}
}

func newClipJobCmd() *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Processing job operations",
	}

	jobCmd.AddCommand(&cobra.Command{
		Use:   "get [JOB_ID]",
		Short: "Get processing job by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			job, err := app.Clip.GetJob(ctx, args[0])
			if err != nil {
				return err
			}
			printJob(job)
			return nil
		},
	})

	jobCmd.AddCommand(&cobra.Command{
		Use:   "list [VIDEO_ID]",
		Short: "List processing jobs for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			jobs, err := app.Clip.ListJobs(ctx, args[0])
			if err != nil {
				return err
			}

			if len(jobs) == 0 {
				fmt.Printf("No jobs found for video: %s\n", args[0])
				return nil
			}

			for _, job := range jobs {
				printJob(job)
				fmt.Println("---")
			}
			return nil
		},
	})

	return jobCmd
}
