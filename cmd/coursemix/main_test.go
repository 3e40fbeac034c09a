package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/coursemix/internal/config"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/transcript"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCmdTest points the global config at a fresh database and vault key.
func setupCmdTest(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	dbPath := filepath.Join(t.TempDir(), "coursemix.db")
	viper.Set("database.path", dbPath)
	viper.Set("vault.key", "command-test-key")
	return dbPath
}

func runCmd(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listGrades(t *testing.T) []engine.GradeView {
	t.Helper()
	out, err := runCmd(t, gradesCmd(), "", "list", "--json")
	require.NoError(t, err)

	var views []engine.GradeView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	return views
}

func TestRootCommandTree(t *testing.T) {
	want := []string{"grades", "progress", "transcript", "suggest", "requirements", "profile", "reviews", "serve", "version"}

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, names[name], "missing command %s", name)
	}

	sub := make(map[string]bool)
	for _, c := range gradesCmd().Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"add", "list", "update", "delete", "history", "import"} {
		assert.True(t, sub[name], "missing grades subcommand %s", name)
	}
}

func TestSetupLogging(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("logging.level", "verbose")
	viper.Set("logging.format", "console")
	assert.Error(t, setupLogging())

	viper.Set("logging.level", "debug")
	viper.Set("logging.format", "yaml")
	assert.Error(t, setupLogging())

	viper.Set("logging.format", "json")
	assert.NoError(t, setupLogging())
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, versionCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "coursemix dev")
}

func TestGradesWorkflow(t *testing.T) {
	setupCmdTest(t)

	out, err := runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "fall", "--year", "2023", "--grade", "91")
	require.NoError(t, err)
	assert.Contains(t, out, "Added COSC 1P02 (Fall 2023, Completed)")

	_, err = runCmd(t, gradesCmd(), "", "add", "COSC 1P03", "--term", "Winter", "--year", "2024")
	require.NoError(t, err)

	views := listGrades(t)
	require.Len(t, views, 2)
	assert.Equal(t, "COSC 1P03", views[0].CourseCode)
	assert.Equal(t, model.StatusInProgress, views[0].Status)
	assert.Equal(t, "91", views[1].Value)

	out, err = runCmd(t, gradesCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "COSC 1P02")
	assert.Contains(t, out, "Winter 2024")

	inProgressID := views[0].ID
	out, err = runCmd(t, gradesCmd(), "", "update", inProgressID, "--grade", "b+")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated COSC 1P03 (Winter 2024, Completed)")

	out, err = runCmd(t, gradesCmd(), "", "history", inProgressID)
	require.NoError(t, err)
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "In-progress")

	out, err = runCmd(t, gradesCmd(), "", "delete", inProgressID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "and its history")

	out, err = runCmd(t, gradesCmd(), "", "delete", views[1].ID, "--yes")
	require.NoError(t, err)
	assert.NotContains(t, out, "and its history")

	assert.Empty(t, listGrades(t))
}

func TestGradesAdd_RejectsOutOfRange(t *testing.T) {
	setupCmdTest(t)

	_, err := runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--grade", "140")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grade cannot exceed 100")

	_, err = runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "Autumn", "--year", "2023")
	assert.Error(t, err)
}

func TestGradesAdd_CompletedNeedsGrade(t *testing.T) {
	setupCmdTest(t)

	tests := []struct {
		name    string
		wantErr string
		args    []string
	}{
		{
			name:    "completed without grade",
			args:    []string{"add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--status", "completed"},
			wantErr: "completed courses need a grade",
		},
		{
			name:    "completed with blank grade",
			args:    []string{"add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--status", "completed", "--grade", " "},
			wantErr: "completed courses need a grade",
		},
		{
			name: "in progress without grade",
			args: []string{"add", "COSC 1P03", "--term", "Winter", "--year", "2024", "--status", "in-progress"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, gradesCmd(), "", tt.args...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	views := listGrades(t)
	require.Len(t, views, 1)
	assert.Equal(t, "COSC 1P03", views[0].CourseCode)
}

func TestGradesDelete_Declined(t *testing.T) {
	setupCmdTest(t)

	_, err := runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--grade", "70")
	require.NoError(t, err)
	id := listGrades(t)[0].ID

	out, err := runCmd(t, gradesCmd(), "n\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted.")
	assert.Len(t, listGrades(t), 1)
}

func TestMissingVaultKey(t *testing.T) {
	setupCmdTest(t)
	viper.Set("vault.key", "")

	_, err := runCmd(t, gradesCmd(), "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COURSEMIX_VAULT_KEY")
}

func TestImportCmd(t *testing.T) {
	setupCmdTest(t)

	file := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(file, []byte(strings.Join([]string{
		"course_code,term,year,status,grade",
		"COSC 1P02,Fall,2023,completed,88",
		"MATH 1P66,Fall,2023,completed,101",
		"COSC 1P03,Winter,2024,in-progress,",
	}, "\n")), 0o600))

	out, err := runCmd(t, gradesCmd(), "", "import", file, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 of 3 grades")
	assert.Contains(t, out, "Row 2")
	assert.Len(t, listGrades(t), 2)
}

func TestProgressCmd(t *testing.T) {
	setupCmdTest(t)

	for _, args := range [][]string{
		{"add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--grade", "95"},
		{"add", "MATH 1P66", "--term", "Fall", "--year", "2023", "--grade", "F"},
		{"add", "COSC 1P03", "--term", "Winter", "--year", "2024"},
	} {
		_, err := runCmd(t, gradesCmd(), "", args...)
		require.NoError(t, err)
	}

	out, err := runCmd(t, progressCmd(), "", "--json")
	require.NoError(t, err)

	var snap struct {
		Summary struct {
			OverallGPA        float64 `json:"overall_gpa"`
			CompletedCourses  int     `json:"completed_courses"`
			PercentComplete   int     `json:"percent_complete"`
			PercentInProgress int     `json:"percent_in_progress"`
		} `json:"summary"`
		Projected string `json:"projected_graduation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.InDelta(t, 2.0, snap.Summary.OverallGPA, 1e-9)
	assert.Equal(t, 2, snap.Summary.CompletedCourses)
	assert.Equal(t, 5, snap.Summary.PercentComplete)
	assert.Equal(t, 3, snap.Summary.PercentInProgress)
	assert.Equal(t, "2028-Winter", snap.Projected)

	out, err = runCmd(t, progressCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "5% Complete (+3% In Progress)")
	assert.Contains(t, out, "Winter 2028")
	assert.Contains(t, out, "Fall 2023")
}

func TestPrintProgress_Warnings(t *testing.T) {
	snap := &engine.Snapshot{
		Summary:       &progress.Summary{TermGPAs: map[model.TermKey]float64{}, YearGPAs: map[int]float64{}},
		Missing:       []string{"COSC 1P02", "MATH 1P66"},
		Undecryptable: []string{"ECON 1P91"},
	}

	var out bytes.Buffer
	printProgress(&out, snap)
	assert.Contains(t, out.String(), "Completed courses with no grade: COSC 1P02, MATH 1P66")
	assert.Contains(t, out.String(), "Could not decrypt grades for: ECON 1P91")

	out.Reset()
	printProgress(&out, &engine.Snapshot{Summary: snap.Summary})
	assert.NotContains(t, out.String(), "no grade")
}

func TestTranscriptCmd(t *testing.T) {
	setupCmdTest(t)

	_, err := runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--grade", "95")
	require.NoError(t, err)
	_, err = runCmd(t, profileCmd(), "", "set", "--name", "Jordan Lee", "--student-id", "7654321")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "transcript.csv")
	out, err := runCmd(t, transcriptCmd(), "", "--format", "csv", "--output", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Transcript written to")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jordan Lee")
	assert.Contains(t, string(data), "2023,COSC 1P02,95 (A+),Completed")

	out, err = runCmd(t, transcriptCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Academic Progress Report")

	_, err = runCmd(t, transcriptCmd(), "", "--format", "pdf")
	assert.Error(t, err)
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
}

func (f *failingCloser) Close() error { return f.closeErr }

func TestWriteTranscriptFile_ReportsCloseError(t *testing.T) {
	report := transcript.Report{Title: "Academic Progress Report"}

	ok := &failingCloser{}
	require.NoError(t, writeTranscriptFile(ok, "csv", report))
	assert.Contains(t, ok.String(), "Academic Progress Report")

	flushErr := errors.New("disk full")
	bad := &failingCloser{closeErr: flushErr}
	assert.ErrorIs(t, writeTranscriptFile(bad, "text", report), flushErr)
}

func TestRequirementsAndSuggest(t *testing.T) {
	setupCmdTest(t)

	for _, args := range [][]string{
		{"add", "COSC 1P02", "--year", "1"},
		{"add", "COSC 1P03", "--year", "1"},
		{"add", "COSC 2P03", "--year", "2", "--type", "core"},
		{"prereq", "COSC 1P03", "COSC 1P02", "--min-grade", "60"},
		{"prereq", "COSC 2P03", "COSC 1P03"},
	} {
		_, err := runCmd(t, requirementsCmd(), "", args...)
		require.NoError(t, err, "requirements %v", args)
	}

	out, err := runCmd(t, requirementsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "COSC 2P03")

	_, err = runCmd(t, gradesCmd(), "", "add", "COSC 1P02", "--term", "Fall", "--year", "2023", "--grade", "65")
	require.NoError(t, err)

	out, err = runCmd(t, suggestCmd(), "", "--json")
	require.NoError(t, err)

	var suggestions []struct {
		CourseCode string `json:"course_code"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "COSC 1P03", suggestions[0].CourseCode)

	_, err = runCmd(t, requirementsCmd(), "", "prereq", "COSC 1P03", "COSC 1P03")
	assert.Error(t, err)
}

func TestProfileCmd(t *testing.T) {
	setupCmdTest(t)

	out, err := runCmd(t, profileCmd(), "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No profile yet")

	_, err = runCmd(t, profileCmd(), "", "set", "--name", "Jordan Lee", "--student-id", "7654321", "--program", "Computer Science")
	require.NoError(t, err)
	_, err = runCmd(t, profileCmd(), "", "set", "--program", "Data Science")
	require.NoError(t, err)

	out, err = runCmd(t, profileCmd(), "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Jordan Lee")
	assert.Contains(t, out, "Data Science")
}

func TestReviewsCmd(t *testing.T) {
	setupCmdTest(t)

	out, err := runCmd(t, reviewsCmd(), "", "add", "COSC 1P02", "--difficulty", "easy", "--rating", "4", "--comment", "Weekly labs help a lot")
	require.NoError(t, err)
	assert.Contains(t, out, "Reviewed COSC 1P02 (Easy)")

	_, err = runCmd(t, reviewsCmd(), "", "add", "MATH 1P66", "-d", "Hard", "-m", "Proofs every week")
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    []string
		courses []string
	}{
		{name: "all", args: []string{"list", "--json"}, courses: []string{"COSC 1P02", "MATH 1P66"}},
		{name: "by course", args: []string{"list", "math 1p66", "--json"}, courses: []string{"MATH 1P66"}},
		{name: "by difficulty", args: []string{"list", "--difficulty", "easy", "--json"}, courses: []string{"COSC 1P02"}},
		{name: "by keyword", args: []string{"list", "--keyword", "PROOFS", "--json"}, courses: []string{"MATH 1P66"}},
		{name: "no match", args: []string{"list", "--keyword", "midterm", "--json"}, courses: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, reviewsCmd(), "", tt.args...)
			require.NoError(t, err)

			var reviews []model.Review
			require.NoError(t, json.Unmarshal([]byte(out), &reviews))
			courses := make([]string, 0, len(reviews))
			for _, r := range reviews {
				courses = append(courses, r.CourseCode)
			}
			assert.Equal(t, tt.courses, courses)
		})
	}

	out, err = runCmd(t, reviewsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "Proofs every week")

	out, err = runCmd(t, reviewsCmd(), "", "list", "--keyword", "midterm")
	require.NoError(t, err)
	assert.Contains(t, out, "No reviews match the filters.")
}

func TestReviewsCmd_Rejects(t *testing.T) {
	setupCmdTest(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown difficulty", args: []string{"add", "COSC 1P02", "--difficulty", "brutal"}},
		{name: "missing difficulty", args: []string{"add", "COSC 1P02"}},
		{name: "rating out of range", args: []string{"add", "COSC 1P02", "-d", "easy", "--rating", "9"}},
		{name: "bad sort", args: []string{"list", "--sort", "random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, reviewsCmd(), "", tt.args...)
			assert.Error(t, err)
		})
	}
}
