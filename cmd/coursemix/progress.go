package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/transcript"
	"github.com/Veraticus/coursemix/internal/tui"
	"github.com/Veraticus/coursemix/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func progressCmd() *cobra.Command {
	var (
		outJSON bool
		useTUI  bool
		theme   string
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show GPA and degree progress",
		Long: `Summarize grades: overall, per-term and per-year GPA, numerical average,
completed and in-progress courses, and the projected graduation term.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if useTUI {
				return tui.Run(ctx,
					tui.WithLoader(func(ctx context.Context) (*engine.Snapshot, error) { return e.Snapshot(ctx) }),
					tui.WithTheme(themes.ByName(viper.GetString("tui.theme"))),
				)
			}

			snap, err := e.Snapshot(ctx)
			if err != nil {
				return err
			}
			if outJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			printProgress(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "open the interactive dashboard")
	cmd.Flags().StringVar(&theme, "theme", "default", "dashboard theme (default, catppuccin)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func printProgress(w io.Writer, snap *engine.Snapshot) {
	s := snap.Summary

	projected := transcript.NotDetermined
	if snap.Projected != nil {
		projected = snap.Projected.Display()
	}

	lines := []string{
		transcript.ProgressLine(s.PercentComplete, s.PercentInProgress),
		"",
		fmt.Sprintf("Overall GPA:          %s / 4.0", cli.FormatGPA(s.OverallGPA)),
		fmt.Sprintf("Numerical average:    %.1f", s.NumericalAverage),
		fmt.Sprintf("Completed courses:    %d", s.CompletedCourses),
		fmt.Sprintf("In progress:          %d", s.InProgressCourses),
		fmt.Sprintf("Remaining:            %d", s.RemainingCourses),
		fmt.Sprintf("Projected graduation: %s", projected),
	}
	fmt.Fprintln(w, cli.RenderBox(cli.GradIcon+" Degree Progress", strings.Join(lines, "\n")))

	if terms := s.Terms(); len(terms) > 0 {
		rows := make([][]string, 0, len(terms))
		for _, key := range terms {
			rows = append(rows, []string{key.Display(), fmt.Sprintf("%.2f", s.TermGPAs[key])})
		}
		fmt.Fprintln(w, cli.RenderTable([]string{"Term", "GPA"}, rows))
	}
	if years := s.Years(); len(years) > 0 {
		rows := make([][]string, 0, len(years))
		for _, year := range years {
			rows = append(rows, []string{strconv.Itoa(year), fmt.Sprintf("%.2f", s.YearGPAs[year])})
		}
		fmt.Fprintln(w, cli.RenderTable([]string{"Year", "GPA"}, rows))
	}

	if len(snap.Undecryptable) > 0 {
		fmt.Fprintln(w, cli.FormatWarning("Could not decrypt grades for: "+strings.Join(snap.Undecryptable, ", ")))
		fmt.Fprintln(w, cli.SubtleStyle.Render("Check that COURSEMIX_VAULT_KEY matches the key these grades were saved with."))
	}
	if len(snap.Missing) > 0 {
		fmt.Fprintln(w, cli.FormatWarning("Completed courses with no grade: "+strings.Join(snap.Missing, ", ")))
		fmt.Fprintln(w, cli.SubtleStyle.Render("They count toward progress but not GPA. Set a grade with 'coursemix grades update <id> --grade'."))
	}
}
