package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/coursemix/internal/cli"
	"github.com/Veraticus/coursemix/internal/config"
	"github.com/Veraticus/coursemix/internal/sheets"
	"github.com/Veraticus/coursemix/internal/transcript"
	"github.com/spf13/cobra"
)

func transcriptCmd() *cobra.Command {
	var (
		format   string
		output   string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Export an academic progress report",
		Long: `Build the academic progress report and write it as styled text, CSV, or to a
Google Sheets spreadsheet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if format != "text" && format != "csv" {
				return fmt.Errorf("unknown format %q (expected text or csv)", format)
			}

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := e.Transcript(ctx)
			if err != nil {
				return err
			}

			if toSheets {
				sheetsConfig, err := config.LoadSheetsConfig()
				if err != nil {
					return err
				}
				writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
				if err != nil {
					return err
				}
				result, err := writer.Write(ctx, report)
				if err != nil {
					return fmt.Errorf("failed to export to Google Sheets: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d rows to %s", result.RowsWritten, result.SpreadsheetURL)))
				return nil
			}

			if output == "" {
				return renderTranscript(cmd.OutOrStdout(), format, report)
			}

			f, err := os.Create(config.ExpandPath(output))
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeTranscriptFile(f, format, report); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Transcript written to "+output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "export to Google Sheets (see sheets.* config)")

	return cmd
}

func renderTranscript(w io.Writer, format string, report transcript.Report) error {
	if format == "csv" {
		return transcript.WriteCSV(w, report)
	}
	return transcript.RenderText(w, report)
}

// writeTranscriptFile renders report into f and closes it. A failed close is
// reported since it can lose buffered data.
func writeTranscriptFile(f io.WriteCloser, format string, report transcript.Report) error {
	if err := renderTranscript(f, format, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
