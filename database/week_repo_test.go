package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekBounds(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

	start, end := WeekBounds(now)

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 16, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}

func TestCurrentOrCreate(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	t.Run("bootstraps the first week", func(t *testing.T) {
		repo := NewWeekRepo(newTestDB(t))

		week, err := repo.CurrentOrCreate(ctx, monday)
		require.NoError(t, err)

		assert.Equal(t, 1, week.Number)
		assert.Equal(t, "Week 1", week.Theme)
		assert.Equal(t, "Projects for week 1", week.Description)
		assert.True(t, week.Covers(monday))
	})

	t.Run("reuses the covering week", func(t *testing.T) {
		repo := NewWeekRepo(newTestDB(t))

		first, err := repo.CurrentOrCreate(ctx, monday)
		require.NoError(t, err)
		again, err := repo.CurrentOrCreate(ctx, monday.Add(72*time.Hour))
		require.NoError(t, err)

		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, again.Number)
	})

	t.Run("numbers the next week after the latest", func(t *testing.T) {
		repo := NewWeekRepo(newTestDB(t))

		_, err := repo.CurrentOrCreate(ctx, monday)
		require.NoError(t, err)
		next, err := repo.CurrentOrCreate(ctx, monday.AddDate(0, 0, 9))
		require.NoError(t, err)

		assert.Equal(t, 2, next.Number)
		assert.Equal(t, "Week 2", next.Theme)
	})

	t.Run("nothing covers an empty table", func(t *testing.T) {
		repo := NewWeekRepo(newTestDB(t))

		week, err := repo.FindCovering(ctx, monday)
		require.NoError(t, err)
		assert.Nil(t, week)
	})
}
