package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

func NewLessonsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Inspect and manage lessons",
	}
	cmd.AddCommand(newLessonsListCommand())
	cmd.AddCommand(newLessonsCreateCommand())
	return cmd
}

func newLessonsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lessons, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc, err := rt.cfg.BuildService(rt.backends, rt.log)
			if err != nil {
				return err
			}
			lessons, err := svc.ListLessons(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if lessons == nil {
					lessons = []*classroom.Lesson{}
				}
				return printJSON(out, lessons)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tVIDEO\tAUTHOR\tCREATED")
			for _, l := range lessons {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.VideoRef, l.AuthorDisplayName, l.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newLessonsCreateCommand() *cobra.Command {
	var req classroom.CreateLessonRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lesson",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc, err := rt.cfg.BuildService(rt.backends, rt.log)
			if err != nil {
				return err
			}
			lesson, err := svc.CreateLesson(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lesson)
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "lesson title")
	cmd.Flags().StringVar(&req.Description, "description", "", "lesson description")
	cmd.Flags().StringVar(&req.VideoURL, "video", "", "video URL or 11-character video id")
	cmd.Flags().StringVar(&req.ThumbnailURL, "thumbnail", "", "thumbnail URL (default derived from the video)")
	cmd.Flags().StringVar(&req.AuthorDisplayName, "author", "", "author shown on the lesson")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("video")
	return cmd
}
