package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	var outJSON bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest courses to take next",
		Long: `List program requirements you have not started whose prerequisites are all
completed, earliest program year first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			suggestions, err := e.Suggestions(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outJSON {
				return writeJSON(out, suggestions)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No eligible courses. Add program requirements with 'coursemix requirements add'."))
				return nil
			}

			rows := make([][]string, 0, len(suggestions))
			for _, s := range suggestions {
				prereqs := strings.Join(s.Prerequisites, ", ")
				if prereqs == "" {
					prereqs = "-"
				}
				rows = append(rows, []string{s.CourseCode, strconv.Itoa(s.Year), s.RequirementType, prereqs})
			}
			fmt.Fprintln(out, cli.FormatTitle("Suggested Courses"))
			fmt.Fprintln(out, cli.RenderTable([]string{"Course", "Year", "Type", "Prerequisites"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&outJSON, "json", false, "output JSON")

	return cmd
}
