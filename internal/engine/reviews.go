package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/service"
)

// ParseReviewOrder parses "latest", "oldest" or "" (write order).
func ParseReviewOrder(raw string) (service.ReviewOrder, error) {
	switch order := service.ReviewOrder(strings.ToLower(strings.TrimSpace(raw))); order {
	case service.ReviewOrderNone, service.ReviewOrderLatest, service.ReviewOrderOldest:
		return order, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q (expected latest or oldest)", model.ErrInvalid, raw)
	}
}

// Reviews lists reviews matching filter.
func (e *Engine) Reviews(ctx context.Context, filter service.ReviewFilter) ([]model.Review, error) {
	reviews, err := e.storage.ListReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
