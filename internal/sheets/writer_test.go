package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func sampleReport() transcript.Report {
	return transcript.Report{
		Title:        transcript.Title,
		ProgressLine: "10% Complete (+3% In Progress)",
		Footer:       "Generated on March 14, 2025 by CourseMix",
		Student: transcript.StudentInfo{
			Name:                "Ada Lovelace",
			StudentID:           "7654321",
			Program:             "Computer Science",
			ProjectedGraduation: "Winter 2028",
			ReportDate:          "March 14, 2025",
		},
		Summary: transcript.SummaryInfo{OverallGPA: "3.85 / 4.0", Completed: "4 courses", InProgress: "1 courses"},
		Years: []transcript.YearSection{
			{Year: 2025, Rows: []transcript.Row{{CourseCode: "COSC 2P03", Grade: "In Progress", Status: "In-progress"}}},
			{Year: 2024, Rows: []transcript.Row{
				{CourseCode: "ENGL 1F95", Grade: "87.5 (A)", Status: "Completed"},
				{CourseCode: "PHYS 1P21", Grade: "B+", Status: "Completed"},
			}},
		},
	}
}

func TestPrepareReportData(t *testing.T) {
	data := prepareReportData(sampleReport())

	assert.Equal(t, []any{transcript.Title, "March 14, 2025"}, data.values[0])
	assert.Equal(t, []any{"Degree Progress"}, data.values[data.headings[0]])
	assert.Equal(t, []any{"Grades"}, data.values[data.headings[len(data.headings)-1]])
	require.Len(t, data.tableHeaders, 2)

	for _, idx := range data.tableHeaders {
		assert.Equal(t, []any{"Course Code", "Grade", "Status"}, data.values[idx])
	}
	assert.Equal(t, []any{"2025"}, data.values[data.tableHeaders[0]-1])
	assert.Equal(t, []any{"COSC 2P03", "In Progress", "In-progress"}, data.values[data.tableHeaders[0]+1])

	last := data.values[len(data.values)-1]
	assert.Equal(t, []any{"Generated on March 14, 2025 by CourseMix"}, last)
}

func TestFormattingRequests(t *testing.T) {
	data := prepareReportData(sampleReport())
	requests := formattingRequests(42, data)

	// Title, one per heading, one per table header, then the auto-resize.
	require.Len(t, requests, 1+len(data.headings)+len(data.tableHeaders)+1)
	for _, r := range requests[:len(requests)-1] {
		require.NotNil(t, r.RepeatCell)
		assert.Equal(t, int64(42), r.RepeatCell.Range.SheetId)
	}
	assert.NotNil(t, requests[len(requests)-1].AutoResizeDimensions)
}

func TestClassifyAPIError(t *testing.T) {
	assert.NoError(t, classifyAPIError(nil))

	quota := classifyAPIError(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, quota, common.ErrSheetsQuota)
	assert.True(t, common.IsRetryable(quota))

	server := classifyAPIError(&googleapi.Error{Code: http.StatusBadGateway})
	assert.True(t, common.IsRetryable(server))

	client := classifyAPIError(&googleapi.Error{Code: http.StatusForbidden})
	assert.False(t, common.IsRetryable(client))

	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, classifyAPIError(plain))
}

type fakeSheetsAPI struct {
	updates   [][]any
	requests  []string
	failFirst int
	mu        sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPut && f.failFirst > 0 {
		f.failFirst--
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"backend unavailable"}}`)
		return
	}

	switch {
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1","spreadsheetUrl":"https://example.test/sheet-1",
			"sheets":[{"properties":{"sheetId":7,"title":"Transcript"}}]}`)
	case r.Method == http.MethodPut:
		var body sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, row := range body.Values {
			f.updates = append(f.updates, row)
		}
		_, _ = io.WriteString(w, `{}`)
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func newTestWriter(t *testing.T, api http.Handler, cfg Config) *Writer {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return &Writer{
		service: svc,
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWriter_Write(t *testing.T) {
	api := &fakeSheetsAPI{failFirst: 1}
	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.BatchSize = 10
	cfg.RetryDelay = time.Millisecond

	w := newTestWriter(t, api, cfg)
	result, err := w.Write(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", result.SpreadsheetID)
	assert.Equal(t, "https://example.test/sheet-1", result.SpreadsheetURL)
	assert.Equal(t, len(prepareReportData(sampleReport()).values), result.RowsWritten)
	assert.Len(t, api.updates, result.RowsWritten)

	var sawClear, sawBatch bool
	for _, req := range api.requests {
		sawClear = sawClear || strings.HasSuffix(req, ":clear")
		sawBatch = sawBatch || strings.HasSuffix(req, ":batchUpdate")
	}
	assert.True(t, sawClear, "expected a clear request")
	assert.True(t, sawBatch, "expected a formatting request")
}
