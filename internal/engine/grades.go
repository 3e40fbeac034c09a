package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/grade"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/vault"
)

// Delete strategy names reported in FallbackResult.Strategy.
const (
	StrategyStandardDelete = "standard"
	StrategyForceDelete    = "force"
)

// GradeInput describes a grade to add.
type GradeInput struct {
	CourseCode string
	Term       model.Term
	Status     model.GradeStatus
	Value      string
	Year       int
}

// GradeUpdate changes an existing grade. Zero fields keep their current value and a
// nil Value leaves the stored grade untouched.
type GradeUpdate struct {
	Value      *string
	CourseCode string
	Term       model.Term
	Status     model.GradeStatus
	Year       int
}

// HistoryEntry is a decrypted grade history row.
type HistoryEntry struct {
	ChangedAt time.Time         `json:"changed_at"`
	Value     string            `json:"value"`
	Status    model.GradeStatus `json:"status"`
}

// GradeView is a grade record with its decrypted value.
type GradeView struct {
	Value string `json:"grade"`
	model.GradeRecord
}

// ValidateGradeValue checks a raw value entered by the student.
// Empty passes here and is rejected later for completed courses. Numbers must lie
// in [0, 100] and anything else must be a known letter.
func ValidateGradeValue(value string, scale grade.Scale) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if numeric, ok := grade.ParseNumeric(value); ok {
		if numeric > grade.MaxPercentage {
			return fmt.Errorf("%w: grade cannot exceed 100", common.ErrGradeOutOfRange)
		}
		if numeric < 0 {
			return fmt.Errorf("%w: grade cannot be negative", common.ErrGradeOutOfRange)
		}
		return nil
	}
	if scale.IsLetter(value) {
		return nil
	}
	return fmt.Errorf("%w: %q", common.ErrInvalidGrade, value)
}

// resolveStatus applies the rule that entering a grade completes the course.
func resolveStatus(value string, requested model.GradeStatus) model.GradeStatus {
	if strings.TrimSpace(value) != "" {
		return model.StatusCompleted
	}
	if requested == "" {
		return model.StatusInProgress
	}
	return requested
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if _, ok := grade.ParseNumeric(value); ok {
		return value
	}
	return strings.ToUpper(value)
}

// AddGrade validates, encrypts and stores a new grade.
func (e *Engine) AddGrade(ctx context.Context, in GradeInput) (*model.SealedGrade, error) {
	if err := ValidateGradeValue(in.Value, e.Scale()); err != nil {
		return nil, err
	}

	value := normalizeValue(in.Value)
	status := resolveStatus(value, in.Status)
	if status == model.StatusCompleted && value == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrGradeRequired, strings.TrimSpace(in.CourseCode))
	}

	sealed, err := e.vault.Encrypt(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt grade: %w", err)
	}

	g := &model.SealedGrade{
		GradeRecord: model.GradeRecord{
			CourseCode: strings.TrimSpace(in.CourseCode),
			Term:       in.Term,
			Year:       in.Year,
			Status:     status,
		},
		EncryptedGrade: sealed,
	}
	if err := e.storage.SaveGrade(ctx, g); err != nil {
		return nil, err
	}

	slog.Info("Added grade", "id", g.ID, "course", g.CourseCode, "term", g.Key().Display(), "status", g.Status)
	return g, nil
}

// ListGrades returns the grades matching filter with their values decrypted,
// newest term first.
func (e *Engine) ListGrades(ctx context.Context, filter service.GradeFilter) ([]GradeView, error) {
	sealed, err := e.storage.ListGrades(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	ciphertexts := make(map[string]string, len(sealed))
	for _, g := range sealed {
		ciphertexts[g.ID] = g.EncryptedGrade
	}
	decrypted := e.vault.DecryptAll(ciphertexts)

	views := make([]GradeView, 0, len(sealed))
	for _, g := range sealed {
		views = append(views, GradeView{GradeRecord: g.GradeRecord, Value: decrypted[g.ID]})
	}
	return views, nil
}

// UpdateGrade applies update to the grade with the given ID.
func (e *Engine) UpdateGrade(ctx context.Context, id string, update GradeUpdate) (*model.SealedGrade, error) {
	current, err := e.storage.GetGrade(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.CourseCode != "" {
		current.CourseCode = strings.TrimSpace(update.CourseCode)
	}
	if update.Term != "" {
		current.Term = update.Term
	}
	if update.Year != 0 {
		current.Year = update.Year
	}
	if update.Status != "" {
		current.Status = update.Status
	}

	if update.Value != nil {
		if err := ValidateGradeValue(*update.Value, e.Scale()); err != nil {
			return nil, err
		}
		value := normalizeValue(*update.Value)
		sealed, err := e.vault.Encrypt(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt grade: %w", err)
		}
		current.EncryptedGrade = sealed
		if value != "" {
			current.Status = model.StatusCompleted
		}
	}

	// Sealing "" yields "", so an empty ciphertext means no grade.
	if current.Status == model.StatusCompleted && current.EncryptedGrade == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrGradeRequired, current.CourseCode)
	}

	if err := e.storage.UpdateGrade(ctx, current); err != nil {
		return nil, err
	}

	slog.Info("Updated grade", "id", current.ID, "course", current.CourseCode, "status", current.Status)
	return current, nil
}

// DeleteGrade removes a grade, falling back to purging its history when the
// standard delete is blocked by it.
func (e *Engine) DeleteGrade(ctx context.Context, id string) common.FallbackResult {
	result := common.Fallback(ctx,
		common.Strategy{
			Name: StrategyStandardDelete,
			Run: func(ctx context.Context) error {
				return e.storage.DeleteGrade(ctx, id)
			},
		},
		common.Strategy{
			Name: StrategyForceDelete,
			Run: func(ctx context.Context) error {
				return e.storage.ForceDeleteGrade(ctx, id)
			},
		},
	)

	if result.Succeeded() {
		slog.Info("Deleted grade", "id", id, "strategy", result.Strategy)
	} else {
		common.LogError(result.Err, "Failed to delete grade", common.Fields{"id": id, "attempts": len(result.Attempts)})
	}
	return result
}

// History returns the decrypted change history of a grade.
func (e *Engine) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	entries, err := e.storage.GetGradeHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		value, err := e.vault.Decrypt(entry.EncryptedGrade)
		switch {
		case errors.Is(err, vault.ErrDecrypt):
			value = model.GradeDecryptionError
		case err != nil:
			return nil, err
		case value == "":
			value = model.GradeUnavailable
		}
		out = append(out, HistoryEntry{ChangedAt: entry.ChangedAt, Value: value, Status: entry.Status})
	}
	return out, nil
}
