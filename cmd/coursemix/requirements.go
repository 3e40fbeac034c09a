package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/spf13/cobra"
)

func requirementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requirements",
		Aliases: []string{"reqs"},
		Short:   "Manage program requirements",
		Long:    `Record the courses your program requires and their prerequisites. Used by 'coursemix suggest'.`,
	}

	cmd.AddCommand(addRequirementCmd())
	cmd.AddCommand(listRequirementsCmd())
	cmd.AddCommand(addPrerequisiteCmd())

	return cmd
}

func addRequirementCmd() *cobra.Command {
	var (
		reqType  string
		minGrade string
		year     int
		weight   float64
	)

	cmd := &cobra.Command{
		Use:   "add <course-code>",
		Short: "Add or replace a program requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			threshold, err := parseOptionalFloat(minGrade)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			req := &model.CourseRequirement{
				CourseCode:      strings.TrimSpace(args[0]),
				Year:            year,
				CreditWeight:    weight,
				RequirementType: reqType,
				MinGrade:        threshold,
			}
			if err := store.SaveRequirement(ctx, req); err != nil {
				return fmt.Errorf("failed to save requirement: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved requirement %s (year %d)", req.CourseCode, req.Year)))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 1, "program year the course belongs to")
	cmd.Flags().Float64Var(&weight, "credit", 0.5, "credit weight")
	cmd.Flags().StringVar(&reqType, "type", "core", "requirement type, e.g. core or elective")
	cmd.Flags().StringVar(&minGrade, "min-grade", "", "minimum percentage needed to pass the requirement")

	return cmd
}

func listRequirementsCmd() *cobra.Command {
	var outJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List program requirements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			requirements, err := store.ListRequirements(ctx)
			if err != nil {
				return err
			}
			prerequisites, err := store.ListPrerequisites(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outJSON {
				return writeJSON(out, map[string]any{
					"requirements":  requirements,
					"prerequisites": prerequisites,
				})
			}
			if len(requirements) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No requirements found. Use 'coursemix requirements add' to create one."))
				return nil
			}

			byCourse := make(map[string][]string)
			for _, p := range prerequisites {
				byCourse[p.CourseCode] = append(byCourse[p.CourseCode], p.PrerequisiteCode)
			}

			rows := make([][]string, 0, len(requirements))
			for _, r := range requirements {
				minCell := "-"
				if r.MinGrade != nil {
					minCell = strconv.FormatFloat(*r.MinGrade, 'f', -1, 64)
				}
				prereqs := strings.Join(byCourse[r.CourseCode], ", ")
				if prereqs == "" {
					prereqs = "-"
				}
				rows = append(rows, []string{
					r.CourseCode,
					strconv.Itoa(r.Year),
					r.RequirementType,
					strconv.FormatFloat(r.CreditWeight, 'f', -1, 64),
					minCell,
					prereqs,
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Course", "Year", "Type", "Credit", "Min Grade", "Prerequisites"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&outJSON, "json", false, "output JSON")

	return cmd
}

func addPrerequisiteCmd() *cobra.Command {
	var minGrade string

	cmd := &cobra.Command{
		Use:   "prereq <course-code> <prerequisite-code>",
		Short: "Add a prerequisite to a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			threshold, err := parseOptionalFloat(minGrade)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			prereq := &model.Prerequisite{
				CourseCode:       strings.TrimSpace(args[0]),
				PrerequisiteCode: strings.TrimSpace(args[1]),
				MinGrade:         threshold,
			}
			if err := store.SavePrerequisite(ctx, prereq); err != nil {
				return fmt.Errorf("failed to save prerequisite: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s now requires %s", prereq.CourseCode, prereq.PrerequisiteCode)))
			return nil
		},
	}

	cmd.Flags().StringVar(&minGrade, "min-grade", "", "minimum percentage required in the prerequisite")

	return cmd
}
