//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/BatLog/pkg/batlog"
	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/spf13/cobra"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// parseDate accepts RFC 3339 or a local date with optional time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad date %q (want YYYY-MM-DD[ HH:MM])", errUsage, s)
}

func sessionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage recording sessions",
	}
	cmd.AddCommand(
		sessionCreateCommand(a),
		sessionListCommand(a),
		sessionShowCommand(a),
		sessionDeleteCommand(a),
		sessionReportCommand(a),
	)
	return cmd
}

func sessionCreateCommand(a *app) *cobra.Command {
	var (
		s          models.Session
		start, end string
	)
	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a session",
		Example: `  batlog session create "Riverside 2024-06" --location "Mill Lane" --start "2024-06-01 21:30" --lat 51.5 --lon -0.125`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if s.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if s.EndDate, err = parseDate(end); err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			s.Name = args[0]
			id, err := svc.CreateSession(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Created session %s\n   ID: %s\n", s.Name, id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.Location, "location", "", "Place name")
	f.StringVar(&start, "start", "", "Start date, YYYY-MM-DD[ HH:MM]")
	f.StringVar(&end, "end", "", "End date, YYYY-MM-DD[ HH:MM]")
	f.Float64Var(&s.Latitude, "lat", 0, "Latitude in decimal degrees")
	f.Float64Var(&s.Longitude, "lon", 0, "Longitude in decimal degrees")
	f.StringVar(&s.Notes, "notes", "", "Free-text notes")
	return cmd
}

func sessionListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			sessions, err := svc.ListSessions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "📭 No sessions in database")
				return nil
			}
			fmt.Fprintf(out, "📚 Found %d session(s):\n\n", len(sessions))
			for i, s := range sessions {
				printSession(out, i+1, s)
			}
			return nil
		},
	}
}

func sessionShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session and its recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			s, err := svc.GetSession(args[0])
			if err != nil {
				return err
			}
			recs, err := svc.ListRecordings(s.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSession(out, 0, s)
			if len(recs) == 0 {
				fmt.Fprintln(out, "   No recordings")
				return nil
			}
			for _, r := range recs {
				printRecording(out, r)
			}
			return nil
		},
	}
}

func sessionDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session with its recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			s, err := svc.GetSession(args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteSession(s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted session %s (%s)\n", s.Name, s.ID)
			return nil
		},
	}
}

func sessionReportCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Species report across every recording in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			report, err := svc.SessionReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emitReport(cmd, report, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write <base>.log.txt and <base>.manifest instead of printing")
	return cmd
}

func recordingCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recording",
		Short: "Manage recordings within a session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <session-id> <label-file...>",
		Short: "Store labelled segments, measuring peak frequency from the paired WAV",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var errs []error
			for _, path := range args[1:] {
				rec, err := svc.ImportRecording(cmd.Context(), args[0], path)
				if errors.Is(err, batlog.ErrSkippedFile) {
					fmt.Fprintf(out, "⏭️  %s: skipped\n", filepath.Base(path))
					continue
				}
				if err != nil {
					errs = append(errs, err)
					fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
					continue
				}
				fmt.Fprintf(out, "✅ %s: %d segment(s)\n", rec.FileName, len(rec.Segments))
			}
			return errors.Join(errs...)
		},
	})
	return cmd
}

func printSession(out io.Writer, n int, s models.Session) {
	prefix := "  "
	if n > 0 {
		prefix = fmt.Sprintf("%d. ", n)
	}
	fmt.Fprintf(out, "%s%s", prefix, s.Name)
	if s.Location != "" {
		fmt.Fprintf(out, ", %s", s.Location)
	}
	fmt.Fprintf(out, " (ID: %s)\n", s.ID)
	if !s.StartDate.IsZero() {
		fmt.Fprintf(out, "   Started: %s (%s)\n", s.StartDate.Format("2006-01-02 15:04"), humanize.Time(s.StartDate))
	}
	if s.Latitude != 0 || s.Longitude != 0 {
		fmt.Fprintf(out, "   Position: %.5f, %.5f\n", s.Latitude, s.Longitude)
	}
	if s.Notes != "" {
		fmt.Fprintf(out, "   Notes: %s\n", s.Notes)
	}
	fmt.Fprintln(out)
}

func printRecording(out io.Writer, r models.Recording) {
	fmt.Fprintf(out, "   🎙️  %s", r.FileName)
	if r.DurationMs > 0 {
		fmt.Fprintf(out, " [%s]", labels.FormatDuration(time.Duration(r.DurationMs)*time.Millisecond))
	}
	fmt.Fprintln(out)
	for _, seg := range r.Segments {
		start := time.Duration(seg.StartMs) * time.Millisecond
		fmt.Fprintf(out, "      %s +%s %s", labels.FormatOffset(start), labels.FormatDuration(seg.Duration()), seg.Comment)
		if seg.PeakFrequency > 0 {
			fmt.Fprintf(out, " (peak %s)", humanize.SIWithDigits(seg.PeakFrequency, 1, "Hz"))
		}
		fmt.Fprintln(out)
	}
}
