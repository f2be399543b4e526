package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// fakeStore backs the aggregator with an in-memory title and score set.
type fakeStore struct {
	exists    bool
	scores    []int
	stored    *int
	updated   bool
	statsErr  error
	updateErr error
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Title, error) {
	if !f.exists {
		return nil, repository.ErrTitleNotFound
	}
	return &model.Title{ID: id, Name: "t"}, nil
}

func (f *fakeStore) UpdateRating(ctx context.Context, id uint64, rating *int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.stored = rating
	f.updated = true
	return nil
}

func (f *fakeStore) Stats(ctx context.Context, titleID uint64) (float64, int, error) {
	if f.statsErr != nil {
		return 0, 0, f.statsErr
	}
	if len(f.scores) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, s := range f.scores {
		sum += s
	}
	return float64(sum) / float64(len(f.scores)), len(f.scores), nil
}

func recompute(t *testing.T, scores []int) *int {
	t.Helper()
	f := &fakeStore{exists: true, scores: scores}
	require.NoError(t, NewAggregator(f, f).Recompute(context.Background(), 1))
	require.True(t, f.updated, "rating must be persisted")
	return f.stored
}

func TestRecompute_MeanTruncatedTowardZero(t *testing.T) {
	t.Parallel()

	got := recompute(t, []int{8, 10})
	require.NotNil(t, got)
	assert.Equal(t, 9, *got)

	got = recompute(t, []int{1, 1, 1, 1})
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)

	// 7 then 3: mean 5.0.
	got = recompute(t, []int{7, 3})
	require.NotNil(t, got)
	assert.Equal(t, 5, *got)

	// Truncation, not rounding: mean 7.5 stores 7.
	got = recompute(t, []int{7, 8})
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)
}

func TestRecompute_NoReviewsStoresNull(t *testing.T) {
	t.Parallel()

	assert.Nil(t, recompute(t, nil))
}

func TestRecompute_VanishedTitleSwallowed(t *testing.T) {
	t.Parallel()

	f := &fakeStore{exists: false}
	err := NewAggregator(f, f).Recompute(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, f.updated, "no write for a missing title")
}

func TestRecompute_StatsErrorPropagates(t *testing.T) {
	t.Parallel()

	f := &fakeStore{exists: true, statsErr: errors.New("boom")}
	err := NewAggregator(f, f).Recompute(context.Background(), 1)
	assert.Error(t, err)
}

func TestRegister_RecomputesOnPublish(t *testing.T) {
	t.Parallel()

	f := &fakeStore{exists: true, scores: []int{8, 10}}
	bus := event.New()
	NewAggregator(f, f).Register(bus)

	bus.PublishReviewMutated(context.Background(), event.ReviewMutated{TitleID: 1})

	// Synchronous dispatch: the rating is already persisted here.
	require.True(t, f.updated)
	require.NotNil(t, f.stored)
	assert.Equal(t, 9, *f.stored)
}
