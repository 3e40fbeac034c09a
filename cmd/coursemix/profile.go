package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the student profile shown on transcripts",
	}

	cmd.AddCommand(setProfileCmd())
	cmd.AddCommand(showProfileCmd())

	return cmd
}

func setProfileCmd() *cobra.Command {
	var name, studentID, program string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set profile fields",
		Long:  `Set the name, student ID and program name. Fields not given keep their current value.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			profile, err := store.GetProfile(ctx)
			if errors.Is(err, common.ErrNotFound) {
				profile = &model.Profile{}
			} else if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				profile.Name = strings.TrimSpace(name)
			}
			if flags.Changed("student-id") {
				profile.StudentID = strings.TrimSpace(studentID)
			}
			if flags.Changed("program") {
				profile.ProgramName = strings.TrimSpace(program)
			}

			if err := store.SaveProfile(ctx, profile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Profile saved"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&studentID, "student-id", "", "student number")
	cmd.Flags().StringVar(&program, "program", "", "program name")

	return cmd
}

func showProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			profile, err := store.GetProfile(ctx)
			if errors.Is(err, common.ErrNotFound) {
				fmt.Fprintln(out, cli.InfoStyle.Render("No profile yet. Use 'coursemix profile set --name ...' to create one."))
				return nil
			}
			if err != nil {
				return err
			}

			lines := []string{
				"Name:       " + orDash(profile.Name),
				"Student ID: " + orDash(profile.StudentID),
				"Program:    " + orDash(profile.ProgramName),
			}
			fmt.Fprintln(out, cli.RenderBox(cli.BookIcon+" Profile", strings.Join(lines, "\n")))
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
