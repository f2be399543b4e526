// Package rating maintains the derived rating of a title.  The aggregate
// is recomputed in response to review mutation events instead of on every
// read, so the stored value is eventually consistent with the review set:
// a crash between a review write and the recompute leaves it stale until
// the next mutation of that title's reviews.
package rating

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// TitleStore is the slice of the title repository the aggregator needs.
type TitleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Title, error)
	UpdateRating(ctx context.Context, id uint64, rating *int) error
}

// ReviewStats supplies the mean score and review count for a title.
type ReviewStats interface {
	Stats(ctx context.Context, titleID uint64) (avg float64, count int, err error)
}

// Aggregator recomputes and persists title ratings.
type Aggregator struct {
	titles  TitleStore
	reviews ReviewStats
}

// NewAggregator builds an aggregator over the given stores.
func NewAggregator(titles TitleStore, reviews ReviewStats) *Aggregator {
	return &Aggregator{titles: titles, reviews: reviews}
}

// Register subscribes the aggregator to review mutation events on the bus.
func (a *Aggregator) Register(bus *event.Bus) {
	bus.SubscribeReviewMutated(a.handleReviewMutated)
}

// handleReviewMutated runs on the publisher's goroutine.  Errors are logged
// and swallowed: the review write that triggered the event has already
// committed and must still report success to its caller.
func (a *Aggregator) handleReviewMutated(ctx context.Context, ev event.ReviewMutated) {
	if err := a.Recompute(ctx, ev.TitleID); err != nil {
		log.Printf("rating: recompute for title %d failed: %v", ev.TitleID, err)
	}
}

// Recompute reloads the title and stores the mean of its current review
// scores truncated toward zero.  A title with no reviews gets NULL, as does
// a degenerate mean of zero or less.  A title that vanished before the
// event was processed is not an error.
func (a *Aggregator) Recompute(ctx context.Context, titleID uint64) error {
	if _, err := a.titles.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, repository.ErrTitleNotFound) {
			return nil
		}
		return err
	}

	avg, count, err := a.reviews.Stats(ctx, titleID)
	if err != nil {
		return err
	}

	var rating *int
	if count > 0 {
		if v := int(avg); v > 0 {
			rating = &v
		}
	}
	return a.titles.UpdateRating(ctx, titleID, rating)
}
