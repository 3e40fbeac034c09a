package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/transcript"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer exports transcripts to a Google Sheets spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets transcript writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Result describes a completed export.
type Result struct {
	SpreadsheetID  string
	SpreadsheetURL string
	RowsWritten    int
}

// Write replaces the transcript sheet contents with report.
func (w *Writer) Write(ctx context.Context, report transcript.Report) (*Result, error) {
	w.logger.Info("starting transcript export",
		"student_id", report.Student.StudentID,
		"years", len(report.Years))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheet *sheets.Spreadsheet
	err := common.WithRetry(ctx, func() error {
		var getErr error
		spreadsheet, getErr = w.getOrCreateSpreadsheet(ctx)
		return classifyAPIError(getErr)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var sheetErr error
		sheetID, sheetErr = w.ensureSheet(ctx, spreadsheet)
		return classifyAPIError(sheetErr)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare sheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheet.SpreadsheetId); clearErr != nil {
		return nil, fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	data := prepareReportData(report)

	err = common.WithRetry(ctx, func() error {
		return classifyAPIError(w.writeData(ctx, spreadsheet.SpreadsheetId, data.values))
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, spreadsheet.SpreadsheetId, formattingRequests(sheetID, data)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("transcript export completed",
		"spreadsheet_id", spreadsheet.SpreadsheetId,
		"rows_written", len(data.values))

	return &Result{
		SpreadsheetID:  spreadsheet.SpreadsheetId,
		SpreadsheetURL: spreadsheet.SpreadsheetUrl,
		RowsWritten:    len(data.values),
	}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// classifyAPIError marks quota errors as retryable and client errors as permanent.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrSheetsQuota, err)
	case apiErr.Code >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	case apiErr.Code >= 400:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return existing, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.SheetTitle}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created, nil
}

// ensureSheet returns the ID of the transcript tab, adding it when missing.
func (w *Writer) ensureSheet(ctx context.Context, spreadsheet *sheets.Spreadsheet) (int64, error) {
	if id, ok := findSheet(spreadsheet, w.config.SheetTitle); ok {
		return id, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: w.config.SheetTitle},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add sheet %q: %w", w.config.SheetTitle, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unexpected empty reply adding sheet %q", w.config.SheetTitle)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func findSheet(spreadsheet *sheets.Spreadsheet, title string) (int64, bool) {
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, true
		}
	}
	return 0, false
}

func (w *Writer) sheetRange(cells string) string {
	return fmt.Sprintf("'%s'!%s", w.config.SheetTitle, cells)
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.sheetRange("A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// reportData is the transcript laid out as sheet rows.
type reportData struct {
	values [][]any
	// headings are single-cell section titles.
	headings []int
	// tableHeaders are column header rows of the per-year tables.
	tableHeaders []int
}

func prepareReportData(report transcript.Report) reportData {
	rows := 0
	for _, y := range report.Years {
		rows += len(y.Rows) + 3
	}

	data := reportData{values: make([][]any, 0, 20+rows)}
	heading := func(title string) {
		data.headings = append(data.headings, len(data.values))
		data.values = append(data.values, []any{title})
	}

	data.values = append(data.values,
		[]any{report.Title, report.Student.ReportDate},
		[]any{},
	)

	heading("Degree Progress")
	data.values = append(data.values,
		[]any{report.ProgressLine},
		[]any{},
	)

	heading("Student Information")
	data.values = append(data.values,
		[]any{"Name", report.Student.Name},
		[]any{"Student ID", report.Student.StudentID},
		[]any{"Program", report.Student.Program},
		[]any{"Projected Graduation", report.Student.ProjectedGraduation},
		[]any{"Report Date", report.Student.ReportDate},
		[]any{},
	)

	heading("Academic Summary")
	data.values = append(data.values,
		[]any{"Overall GPA", report.Summary.OverallGPA},
		[]any{"Completed", report.Summary.Completed},
		[]any{"In Progress", report.Summary.InProgress},
		[]any{},
	)

	heading("Grades")
	for _, section := range report.Years {
		data.values = append(data.values, []any{strconv.Itoa(section.Year)})
		data.tableHeaders = append(data.tableHeaders, len(data.values))
		header := make([]any, 0, len(transcript.Columns))
		for _, c := range transcript.Columns {
			header = append(header, c)
		}
		data.values = append(data.values, header)
		for _, row := range section.Rows {
			data.values = append(data.values, []any{row.CourseCode, row.Grade, row.Status})
		}
		data.values = append(data.values, []any{})
	}

	data.values = append(data.values,
		[]any{transcript.ConfidentialNotice},
		[]any{report.Footer},
	)
	return data
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.sheetRange(fmt.Sprintf("A%d", i+1)), &sheets.ValueRange{Values: batch}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func formattingRequests(sheetID int64, data reportData) []*sheets.Request {
	bold := func(row int64, size int64, cols int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    row,
					EndRowIndex:      row + 1,
					StartColumnIndex: 0,
					EndColumnIndex:   cols,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: size},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}

	requests := []*sheets.Request{bold(0, 16, 1)}
	for _, row := range data.headings {
		requests = append(requests, bold(int64(row), 12, 1))
	}
	for _, row := range data.tableHeaders {
		requests = append(requests, bold(int64(row), 10, int64(len(transcript.Columns))))
	}

	return append(requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   int64(len(transcript.Columns)),
			},
		},
	})
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
