package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/coursemix/internal/model"
	"github.com/google/uuid"
)

// ErrImportFormat is returned when an import file cannot be parsed.
var ErrImportFormat = errors.New("invalid import file")

// Import columns. Header names are matched case-insensitively and may appear in any order.
const (
	ColumnCourse = "course_code"
	ColumnTerm   = "term"
	ColumnYear   = "year"
	ColumnStatus = "status"
	ColumnGrade  = "grade"
)

var requiredColumns = []string{ColumnCourse, ColumnTerm, ColumnYear}

// ImportResult summarizes an import run.
type ImportResult struct {
	BatchID  string
	Failures map[int]error
	Imported int
}

// ParseGradeCSV reads grades from a CSV file with a header row.
// The status and grade columns are optional.
func ParseGradeCSV(r io.Reader) ([]GradeInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrImportFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFormat, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrImportFormat, col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var inputs []GradeInput
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImportFormat, err)
		}

		term, err := model.ParseTerm(field(row, ColumnTerm))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrImportFormat, line, err)
		}
		year, err := strconv.Atoi(field(row, ColumnYear))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid year %q", ErrImportFormat, line, field(row, ColumnYear))
		}

		in := GradeInput{
			CourseCode: field(row, ColumnCourse),
			Term:       term,
			Year:       year,
			Value:      field(row, ColumnGrade),
		}
		if raw := field(row, ColumnStatus); raw != "" {
			status, ok := model.ParseGradeStatus(raw)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: unknown status %q", ErrImportFormat, line, raw)
			}
			in.Status = status
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ImportGrades adds every input, continuing past individual failures.
// onRow, if set, is called after each row is processed.
func (e *Engine) ImportGrades(ctx context.Context, inputs []GradeInput, onRow func()) (*ImportResult, error) {
	result := &ImportResult{
		BatchID:  uuid.New().String(),
		Failures: make(map[int]error),
	}
	logger := slog.With("batch", result.BatchID)
	logger.Info("Starting grade import", "rows", len(inputs))

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := e.AddGrade(ctx, in); err != nil {
			logger.Warn("Skipping row", "row", i+1, "course", in.CourseCode, "error", err)
			result.Failures[i+1] = err
		} else {
			result.Imported++
		}
		if onRow != nil {
			onRow()
		}
	}

	logger.Info("Finished grade import", "imported", result.Imported, "failed", len(result.Failures))
	return result, nil
}
