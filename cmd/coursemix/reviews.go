package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/spf13/cobra"
)

func reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Keep notes on the courses you have taken",
		Long: `Record how hard a course was, an optional 1-5 rating and a comment, then search
your reviews when planning future terms.`,
	}

	cmd.AddCommand(addReviewCmd())
	cmd.AddCommand(listReviewsCmd())

	return cmd
}

func addReviewCmd() *cobra.Command {
	var (
		difficulty string
		comment    string
		rating     int
	)

	cmd := &cobra.Command{
		Use:   "add <course-code>",
		Short: "Review a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, ok := model.ParseDifficulty(difficulty)
			if !ok {
				return fmt.Errorf("unknown difficulty %q (expected easy, medium or hard)", difficulty)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			review := &model.Review{
				CourseCode: args[0],
				Difficulty: d,
				Comment:    comment,
			}
			if cmd.Flags().Changed("rating") {
				review.Rating = &rating
			}
			if err := store.SaveReview(ctx, review); err != nil {
				return fmt.Errorf("failed to save review: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Reviewed %s (%s)", review.CourseCode, review.Difficulty)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "overall rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "what you thought of the course")
	_ = cmd.MarkFlagRequired("difficulty")

	return cmd
}

func listReviewsCmd() *cobra.Command {
	var (
		difficulty string
		keyword    string
		sortBy     string
		outJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "list [course-code]",
		Short: "List course reviews",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter := service.ReviewFilter{Keyword: keyword}
			if len(args) == 1 {
				filter.CourseCode = args[0]
			}
			if difficulty != "" {
				d, ok := model.ParseDifficulty(difficulty)
				if !ok {
					return fmt.Errorf("unknown difficulty %q (expected easy, medium or hard)", difficulty)
				}
				filter.Difficulty = d
			}
			order, err := engine.ParseReviewOrder(sortBy)
			if err != nil {
				return err
			}
			filter.Order = order

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reviews, err := store.ListReviews(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outJSON {
				if reviews == nil {
					reviews = []model.Review{}
				}
				return writeJSON(out, reviews)
			}
			if len(reviews) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No reviews match the filters."))
				return nil
			}

			rows := make([][]string, 0, len(reviews))
			for _, r := range reviews {
				ratingCell := "-"
				if r.Rating != nil {
					ratingCell = strconv.Itoa(*r.Rating) + "/5"
				}
				rows = append(rows, []string{
					r.CreatedAt.Local().Format("2006-01-02"),
					r.CourseCode,
					string(r.Difficulty),
					ratingCell,
					orDash(strings.TrimSpace(r.Comment)),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Date", "Course", "Difficulty", "Rating", "Comment"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "only this difficulty")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "only reviews whose comment contains this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "latest or oldest (default: order written)")
	cmd.Flags().BoolVar(&outJSON, "json", false, "output JSON")

	return cmd
}
