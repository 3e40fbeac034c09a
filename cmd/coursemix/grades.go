package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func gradesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "Manage course grades",
		Long:  `Add, list, update and delete course grades. Grade values are encrypted before they are stored.`,
	}

	cmd.AddCommand(addGradeCmd())
	cmd.AddCommand(listGradesCmd())
	cmd.AddCommand(updateGradeCmd())
	cmd.AddCommand(deleteGradeCmd())
	cmd.AddCommand(gradeHistoryCmd())
	cmd.AddCommand(importGradesCmd())

	return cmd
}

func addGradeCmd() *cobra.Command {
	var (
		term   string
		status string
		value  string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "add <course-code>",
		Short: "Add a course grade",
		Long: `Record a course for a term. Giving a grade (a percentage such as 87 or a letter
such as B+) marks the course completed; leave it out for a course in progress.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := model.ParseTerm(term)
			if err != nil {
				return err
			}
			s, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			g, err := e.AddGrade(ctx, engine.GradeInput{
				CourseCode: args[0],
				Term:       t,
				Year:       year,
				Status:     s,
				Value:      value,
			})
			if err != nil {
				return fmt.Errorf("failed to add grade: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s, %s) [%s]",
				g.CourseCode, g.Key().Display(), g.Status.Display(), g.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "term (Fall, Winter, Spring, Summer)")
	cmd.Flags().IntVar(&year, "year", 0, "academic year")
	cmd.Flags().StringVar(&value, "grade", "", "grade value, a percentage or letter")
	cmd.Flags().StringVar(&status, "status", "", "completed or in-progress (default: completed when a grade is given)")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func listGradesCmd() *cobra.Command {
	var (
		term    string
		status  string
		year    int
		outJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List grades",
		Long:  `Display grades newest term first, optionally filtered by term, year or status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			t, err := parseTermFlag(term)
			if err != nil {
				return err
			}
			s, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			views, err := e.ListGrades(ctx, service.GradeFilter{Term: t, Year: year, Status: s})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outJSON {
				return writeJSON(out, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No grades found. Use 'coursemix grades add' to record one."))
				return nil
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.ID, v.CourseCode, v.Key().Display(), v.Value, v.Status.Display()})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"ID", "Course", "Term", "Grade", "Status"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "only this term")
	cmd.Flags().IntVar(&year, "year", 0, "only this year")
	cmd.Flags().StringVar(&status, "status", "", "only this status")
	cmd.Flags().BoolVar(&outJSON, "json", false, "output JSON")

	return cmd
}

func updateGradeCmd() *cobra.Command {
	var (
		course string
		term   string
		status string
		value  string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a grade",
		Long: `Change a recorded grade. The previous value is kept in the grade's history.
Setting a grade marks the course completed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := parseTermFlag(term)
			if err != nil {
				return err
			}
			s, err := parseStatusFlag(status)
			if err != nil {
				return err
			}

			update := engine.GradeUpdate{CourseCode: course, Term: t, Year: year, Status: s}
			if cmd.Flags().Changed("grade") {
				update.Value = &value
			}

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			g, err := e.UpdateGrade(ctx, args[0], update)
			if err != nil {
				return fmt.Errorf("failed to update grade: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s (%s, %s)",
				g.CourseCode, g.Key().Display(), g.Status.Display())))
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "new course code")
	cmd.Flags().StringVar(&term, "term", "", "new term")
	cmd.Flags().IntVar(&year, "year", 0, "new year")
	cmd.Flags().StringVar(&value, "grade", "", "new grade value")
	cmd.Flags().StringVar(&status, "status", "", "new status")

	return cmd
}

func deleteGradeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a grade",
		Long:  `Delete a grade. Grades that have been edited also lose their history.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !yes {
				confirmed, err := cli.NewConfirmer(cmd.InOrStdin(), out).Confirm(ctx, "Delete grade "+args[0]+"?")
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, cli.FormatInfo("Nothing deleted."))
					return nil
				}
			}

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			result := e.DeleteGrade(ctx, args[0])
			if !result.Succeeded() {
				return fmt.Errorf("failed to delete grade: %w", result.Err)
			}

			msg := "Deleted grade " + args[0]
			if result.Strategy == engine.StrategyForceDelete {
				msg += " and its history"
			}
			fmt.Fprintln(out, cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func gradeHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show previous values of a grade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := e.History(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("This grade has never been changed."))
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.ChangedAt.Local().Format("2006-01-02 15:04"), entry.Value, entry.Status.Display()})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Changed", "Previous Grade", "Previous Status"}, rows))
			return nil
		},
	}
}

func importGradesCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import grades from a CSV file",
		Long: `Import grades from a CSV file with a header row. Required columns are course_code,
term and year; status and grade are optional. Rows that fail validation are reported and
skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			inputs, err := engine.ParseGradeCSV(f)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No rows to import."))
				return nil
			}

			interrupts := cli.NewInterruptHandler(out)
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Import", "Rows imported so far have been saved.")

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var onRow func()
			if !quiet {
				bar := progressbar.NewOptions(len(inputs),
					progressbar.OptionSetWriter(out),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("[cyan][bold]Importing grades...[reset]"),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "[green]=[reset]",
						SaucerHead:    "[green]>[reset]",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}),
					progressbar.OptionOnCompletion(func() {
						fmt.Fprintln(out)
					}),
				)
				onRow = func() { _ = bar.Add(1) }
			}

			result, err := e.ImportGrades(ctx, inputs, onRow)
			if err != nil && !interrupts.WasInterrupted() {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d grades", result.Imported, len(inputs))))
			rows := make([]int, 0, len(result.Failures))
			for row := range result.Failures {
				rows = append(rows, row)
			}
			sort.Ints(rows)
			for _, row := range rows {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Row %d: %v", row, result.Failures[row])))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")

	return cmd
}
