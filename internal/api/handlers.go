package api

import (
	"net/http"
	"strconv"

	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
	"github.com/labstack/echo/v4"
)

type handlers struct {
	engine *engine.Engine
}

// progress returns the summary, projection and decryption problems.
func (h *handlers) progress(ctx echo.Context) error {
	snap, err := h.engine.Snapshot(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

// grades lists grades, optionally filtered by status, term and year query parameters.
func (h *handlers) grades(ctx echo.Context) error {
	filter, err := parseFilter(ctx)
	if err != nil {
		return err
	}

	views, err := h.engine.ListGrades(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"grades": views})
}

func (h *handlers) transcript(ctx echo.Context) error {
	report, err := h.engine.Transcript(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (h *handlers) suggestions(ctx echo.Context) error {
	suggestions, err := h.engine.Suggestions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"suggestions": suggestions})
}

// reviews lists course reviews filtered by course, difficulty, keyword and sort.
func (h *handlers) reviews(ctx echo.Context) error {
	filter := service.ReviewFilter{
		CourseCode: ctx.QueryParam("course"),
		Keyword:    ctx.QueryParam("q"),
	}
	if raw := ctx.QueryParam("difficulty"); raw != "" {
		difficulty, ok := model.ParseDifficulty(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown difficulty "+strconv.Quote(raw))
		}
		filter.Difficulty = difficulty
	}
	order, err := engine.ParseReviewOrder(ctx.QueryParam("sort"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter.Order = order

	reviews, err := h.engine.Reviews(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}

func parseFilter(ctx echo.Context) (service.GradeFilter, error) {
	var filter service.GradeFilter

	if raw := ctx.QueryParam("status"); raw != "" {
		status, ok := model.ParseGradeStatus(raw)
		if !ok {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "unknown status "+strconv.Quote(raw))
		}
		filter.Status = status
	}
	if raw := ctx.QueryParam("term"); raw != "" {
		term, err := model.ParseTerm(raw)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.Term = term
	}
	if raw := ctx.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid year "+strconv.Quote(raw))
		}
		filter.Year = year
	}
	return filter, nil
}
