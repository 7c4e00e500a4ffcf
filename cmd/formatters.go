package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// printJSON marshals any value with indentation for --format json output
func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func printVideo(v model.Video) {
	fmt.Printf("ID: %s\n", v.ID)
	fmt.Printf("Title: %s\n", v.Title)
	fmt.Printf("Source File: %s\n", v.SourceFileID)
	fmt.Printf("Status: %s\n", v.Status)
	if v.DurationSeconds != nil {
		fmt.Printf("Duration: %.1fs\n", *v.DurationSeconds)
	}
	if v.Progress != nil {
		fmt.Printf("Progress: %s\n", *v.Progress)
	}
	if v.CachedBlobKey != nil && v.CacheExpiresAt != nil {
		fmt.Printf("Cached Until: %s\n", v.CacheExpiresAt.Format(time.RFC3339))
	}
	if v.ErrorMessage != nil {
		fmt.Printf("Error: %s\n", *v.ErrorMessage)
	}
	fmt.Printf("Created: %s\n", v.CreatedAt.Format(time.RFC3339))
}

func printClip(c model.Clip) {
	fmt.Printf("ID: %s\n", c.ID)
	fmt.Printf("Video ID: %s\n", c.VideoID)
	fmt.Printf("Range: %.1fs - %.1fs\n", c.StartSeconds, c.EndSeconds)
	if c.Title != nil {
		fmt.Printf("Title: %s\n", *c.Title)
	}
	if c.Excerpt != nil {
		fmt.Printf("Excerpt: %s\n", *c.Excerpt)
	}
	fmt.Printf("Status: %s\n", c.Status)
	if c.UploadedFileID != nil {
		fmt.Printf("Uploaded File: %s\n", *c.UploadedFileID)
	}
	if c.ErrorMessage != nil {
		fmt.Printf("Error: %s\n", *c.ErrorMessage)
	}
	fmt.Printf("Created: %s\n", c.CreatedAt.Format(time.RFC3339))
}

func printJob(j model.ProcessingJob) {
	fmt.Printf("Job ID: %s\n", j.ID)
	fmt.Printf("Video ID: %s\n", j.VideoID)
	fmt.Printf("Instructions: %s\n", j.Instructions)
	fmt.Printf("Status: %s\n", j.Status)
	if j.StartedAt != nil {
		fmt.Printf("Started: %s\n", j.StartedAt.Format(time.RFC3339))
	}
	if j.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", j.CompletedAt.Format(time.RFC3339))
	}
	if j.ErrorMessage != nil {
		fmt.Printf("Error: %s\n", *j.ErrorMessage)
	}
}

func printSubtitle(s model.ClipSubtitle) {
	fmt.Printf("ID: %s\n", s.ID)
	fmt.Printf("Clip ID: %s\n", s.ClipID)
	fmt.Printf("Status: %s\n", s.Status)
	fmt.Printf("Segments (%d):\n", len(s.Segments))
	for _, seg := range s.Segments {
		fmt.Printf("[%d] %.2fs - %.2fs\n", seg.Index, seg.StartSeconds, seg.EndSeconds)
		for _, line := range seg.Lines {
			fmt.Printf("    %s\n", line)
		}
	}
}

func printComposition(cv model.ComposedVideo) {
	fmt.Printf("ID: %s\n", cv.ID)
	fmt.Printf("Project ID: %s\n", cv.ProjectID)
	fmt.Printf("Script ID: %s\n", cv.ScriptID)
	fmt.Printf("Status: %s\n", cv.Status)
	if cv.OutputFileID != nil {
		fmt.Printf("Output File: %s\n", *cv.OutputFileID)
	}
	if cv.DurationSeconds != nil {
		fmt.Printf("Duration: %.1fs\n", *cv.DurationSeconds)
	}
	if cv.BGM != nil {
		fmt.Printf("BGM: %s\n", *cv.BGM)
	}
	if cv.ErrorMessage != nil {
		fmt.Printf("Error: %s\n", *cv.ErrorMessage)
	}
	fmt.Printf("Created: %s\n", cv.CreatedAt.Format(time.RFC3339))
}
