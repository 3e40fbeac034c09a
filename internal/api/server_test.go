package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/coursemix/internal/config"
	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/Veraticus/coursemix/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpErr struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T) (Server, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	e, err := engine.New(db.Storage, db.Vault, config.Settings{Progress: progress.DefaultConfig()})
	require.NoError(t, err)
	e.SetClock(func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) })

	return NewServer(&Options{Engine: e, DisableReqLogs: true}), db
}

func doGet(t *testing.T, s Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func seed(db *testutil.TestDB) {
	db.AddGrade("COSC 1P02", 2023, model.TermFall, model.StatusCompleted, "95")
	db.AddGrade("MATH 1P66", 2023, model.TermFall, model.StatusCompleted, "F")
	db.AddGrade("COSC 1P03", 2024, model.TermWinter, model.StatusInProgress, "")
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doGet(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CourseMix")
}

func TestProgress(t *testing.T) {
	s, db := newTestServer(t)
	seed(db)

	rec := doGet(t, s, "/v1/progress/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary   progress.Summary `json:"summary"`
		Projected string           `json:"projected_graduation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 2, body.Summary.CompletedCourses)
	assert.Equal(t, 1, body.Summary.InProgressCourses)
	assert.Equal(t, 37, body.Summary.RemainingCourses)
	assert.Equal(t, 5, body.Summary.PercentComplete)
	assert.Equal(t, 3, body.Summary.PercentInProgress)
	assert.InDelta(t, 2.0, body.Summary.OverallGPA, 1e-9)
	assert.InDelta(t, 70.0, body.Summary.NumericalAverage, 1e-9)
	assert.Contains(t, body.Summary.TermGPAs, model.TermKey{Year: 2023, Term: model.TermFall})
	assert.Equal(t, "2028-Winter", body.Projected)
}

func TestGrades(t *testing.T) {
	s, db := newTestServer(t)
	seed(db)

	tests := []struct {
		name      string
		path      string
		wantCodes []string
	}{
		{name: "all", path: "/v1/grades", wantCodes: []string{"COSC 1P03", "COSC 1P02", "MATH 1P66"}},
		{name: "by status", path: "/v1/grades?status=in_progress", wantCodes: []string{"COSC 1P03"}},
		{name: "by term and year", path: "/v1/grades?term=fall&year=2023", wantCodes: []string{"COSC 1P02", "MATH 1P66"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, s, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Grades []engine.GradeView `json:"grades"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			codes := make([]string, 0, len(body.Grades))
			for _, g := range body.Grades {
				codes = append(codes, g.CourseCode)
			}
			assert.Equal(t, tt.wantCodes, codes)
		})
	}
}

func TestGrades_DecryptedValues(t *testing.T) {
	s, db := newTestServer(t)
	seed(db)

	rec := doGet(t, s, "/v1/grades?status=completed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"grade":"95"`)
	assert.Contains(t, rec.Body.String(), `"grade":"F"`)
}

func TestGrades_BadFilter(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{
		"/v1/grades?status=dropped",
		"/v1/grades?term=autumn",
		"/v1/grades?year=soon",
	} {
		t.Run(path, func(t *testing.T) {
			rec := doGet(t, s, path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body httpErr
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestTranscript(t *testing.T) {
	s, db := newTestServer(t)
	seed(db)
	db.MustSaveProfile("Jordan Lee", "7654321", "Computer Science")

	rec := doGet(t, s, "/v1/transcript")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Academic Progress Report")
	assert.Contains(t, body, "5% Complete (+3% In Progress)")
	assert.Contains(t, body, "Jordan Lee")
	assert.Contains(t, body, "March 15, 2024")
	assert.Contains(t, body, "95 (A+)")
}

func TestSuggestions(t *testing.T) {
	s, db := newTestServer(t)
	seed(db)
	db.AddRequirement("COSC 2P03", 2, "COSC 1P03")
	db.AddRequirement("COSC 2P12", 2, "COSC 1P02")

	rec := doGet(t, s, "/v1/suggestions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Suggestions []struct {
			CourseCode string `json:"course_code"`
		} `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, "COSC 2P12", body.Suggestions[0].CourseCode)
}

func TestReviews(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()
	three := 3
	base := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Storage.SaveReview(ctx, &model.Review{
		CourseCode: "COSC 1P02", Difficulty: model.DifficultyEasy, Comment: "Gentle start", CreatedAt: base,
	}))
	require.NoError(t, db.Storage.SaveReview(ctx, &model.Review{
		CourseCode: "MATH 1P66", Difficulty: model.DifficultyHard, Rating: &three, Comment: "Start the problem sets early", CreatedAt: base.Add(time.Hour),
	}))

	tests := []struct {
		name    string
		path    string
		courses []string
	}{
		{name: "all", path: "/v1/reviews", courses: []string{"COSC 1P02", "MATH 1P66"}},
		{name: "latest first", path: "/v1/reviews?sort=latest", courses: []string{"MATH 1P66", "COSC 1P02"}},
		{name: "by course", path: "/v1/reviews?course=cosc%201p02", courses: []string{"COSC 1P02"}},
		{name: "by difficulty", path: "/v1/reviews?difficulty=hard", courses: []string{"MATH 1P66"}},
		{name: "by keyword", path: "/v1/reviews?q=start&sort=oldest", courses: []string{"COSC 1P02", "MATH 1P66"}},
		{name: "no match", path: "/v1/reviews?q=midterm", courses: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, s, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				Reviews []model.Review `json:"reviews"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			courses := make([]string, 0, len(body.Reviews))
			for _, r := range body.Reviews {
				courses = append(courses, r.CourseCode)
			}
			assert.Equal(t, tt.courses, courses)
		})
	}
}

func TestReviews_BadFilter(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/v1/reviews?difficulty=brutal", "/v1/reviews?sort=random"} {
		t.Run(path, func(t *testing.T) {
			rec := doGet(t, s, path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doGet(t, s, "/v1/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body httpErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error)
}
