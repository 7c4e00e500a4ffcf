package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	composesvc "github.com/team-mirai-volunteer/video-processor-sub003/internal/service/compose"
)

// newComposeCmd creates the compose command tree
func newComposeCmd() *cobra.Command {
	composeCmd := &cobra.Command{
		Use:   "compose",
		Short: "Scene composition operations",
		Long:  `Render YAML scene lists into composed short videos.`,
	}

	composeCmd.AddCommand(newComposeCreateCmd())
	composeCmd.AddCommand(newComposeResetCmd())
	composeCmd.AddCommand(newComposeGetCmd())
	composeCmd.AddCommand(newComposeListCmd())

	return composeCmd
}

func newComposeCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create [PROJECT_ID] [SCRIPT_ID]",
		Short: "Compose a short video from a scene list",
		Long: `Render the scenes of a YAML file into one short video for the script.
Scene assets that cannot be resolved are skipped; only a fully unresolvable
list fails the composition. A script has at most one composition: reset a
finished one before composing again.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenesPath, _ := cmd.Flags().GetString("scenes")
			bgmFlag, _ := cmd.Flags().GetString("bgm")

			scenes, bgm, err := composesvc.LoadSceneFile(scenesPath)
			if err != nil {
				return err
			}
			if bgmFlag != "" {
				bgm = &bgmFlag
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cv, err := app.Compose.Compose(ctx, args[0], args[1], scenes, bgm)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Composition finished!\n")
			printComposition(cv)
			return nil
		},
	}

	createCmd.Flags().StringP("scenes", "s", "", "YAML scene list file")
	createCmd.Flags().StringP("bgm", "b", "", "Origin file id of the background music (overrides the scene file)")
	createCmd.MarkFlagRequired("scenes")

	return createCmd
}

func newComposeResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [COMPOSED_VIDEO_ID]",
		Short: "Reset a finished composition for regeneration",
		Long: `Return a completed or failed composition to pending, clearing its output
file, duration and error. An in-flight composition cannot be reset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cv, err := app.Compose.Reset(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✅ Composition reset to pending.\n")
			printComposition(cv)
			return nil
		},
	}
}

func newComposeGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [COMPOSED_VIDEO_ID]",
		Short: "Get composed video by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			byScript, _ := cmd.Flags().GetBool("by-script")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var cv model.ComposedVideo
			if byScript {
				cv, err = app.Compose.GetByScript(ctx, args[0])
			} else {
				cv, err = app.Compose.Get(ctx, args[0])
			}
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(cv)
			}
			printComposition(cv)
			return nil
		},
	}

	getCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	getCmd.Flags().BoolP("by-script", "S", false, "Look up by script id instead of composition id")

	return getCmd
}

func newComposeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [PROJECT_ID]",
		Short: "List composed videos for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app, cleanup, err := NewServiceFactory().CreateApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			compositions, err := app.Compose.ListByProject(ctx, args[0])
			if err != nil {
				return err
			}

			if len(compositions) == 0 {
				fmt.Printf("No compositions found for project: %s\n", args[0])
				return nil
			}

			for _, cv := range compositions {
				printComposition(cv)
				fmt.Println("---")
			}
			return nil
		},
	}
}
