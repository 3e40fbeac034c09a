package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/Veraticus/coursemix/internal/suggest"
	"github.com/Veraticus/coursemix/internal/transcript"
)

// Snapshot is every grade decrypted and summarized at one point in time.
type Snapshot struct {
	Summary       *progress.Summary   `json:"summary"`
	Projected     *model.TermKey      `json:"projected_graduation,omitempty"`
	Decrypted     map[string]string   `json:"-"`
	Records       []model.GradeRecord `json:"records"`
	Missing       []string            `json:"missing,omitempty"`
	Undecryptable []string            `json:"undecryptable,omitempty"`
}

// Snapshot loads all grades, decrypts them and computes progress and the
// projected graduation term.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	sealed, err := e.storage.ListGrades(ctx, service.GradeFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	records := make([]model.GradeRecord, 0, len(sealed))
	ciphertexts := make(map[string]string, len(sealed))
	for _, g := range sealed {
		records = append(records, g.GradeRecord)
		ciphertexts[g.ID] = g.EncryptedGrade
	}
	decrypted := e.vault.DecryptAll(ciphertexts)

	summary, err := e.aggregator.Aggregate(records, decrypted)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Records:   records,
		Decrypted: decrypted,
		Summary:   summary,
		Missing:   progress.MissingGrades(records, decrypted),
	}
	for _, rec := range records {
		if decrypted[rec.ID] == model.GradeDecryptionError {
			snap.Undecryptable = append(snap.Undecryptable, rec.CourseCode)
		}
	}
	if len(snap.Undecryptable) > 0 {
		common.LogWarn("Some grades could not be decrypted", common.Fields{"courses": snap.Undecryptable})
	}
	if len(snap.Missing) > 0 {
		common.LogWarn("Some completed courses have no grade", common.Fields{"courses": snap.Missing})
	}

	from, ok := progress.LatestTerm(records)
	if !ok {
		from = model.TermForDate(e.now())
	}
	projected, err := progress.ProjectGraduation(summary.RemainingCourses, e.settings.CoursesPerTerm, from, e.settings.StudyTerms)
	if err != nil {
		slog.Warn("Could not project graduation", "error", err)
	} else {
		snap.Projected = &projected
	}

	slog.Debug("Loaded snapshot",
		"records", len(records),
		"completed", summary.CompletedCourses,
		"in_progress", summary.InProgressCourses)
	return snap, nil
}

// Suggestions returns the courses the student could take next.
func (e *Engine) Suggestions(ctx context.Context) ([]suggest.Suggestion, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	requirements, err := e.storage.ListRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	prerequisites, err := e.storage.ListPrerequisites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}

	return suggest.Suggest(requirements, prerequisites, snap.Records, snap.Decrypted, e.Scale(), e.settings.SuggestionLimit), nil
}

// Transcript builds the progress report for the stored profile and grades.
func (e *Engine) Transcript(ctx context.Context) (transcript.Report, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return transcript.Report{}, err
	}

	profile, err := e.storage.GetProfile(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return transcript.Report{}, fmt.Errorf("failed to load profile: %w", err)
	}

	return transcript.Build(transcript.Input{
		Now:       e.now(),
		Profile:   profile,
		Summary:   snap.Summary,
		Projected: snap.Projected,
		Decrypted: snap.Decrypted,
		Records:   snap.Records,
		Scale:     e.Scale(),
	}), nil
}
