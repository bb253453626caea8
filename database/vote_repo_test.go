package database

import (
	"context"
	"testing"
	"time"

	"github.com/rpupo63/builders-showcase-backend/errs"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestVoteRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("overwrites the direction of an existing vote", func(t *testing.T) {
		db := newTestDB(t)
		lead := createBuilder(t, db, "Ada")
		voter := createBuilder(t, db, "Grace")
		project := createProject(t, db, lead, "Compiler", models.StatusApproved, now)
		repo := NewVoteRepo(db)

		first, err := repo.Upsert(ctx, project.ID, voter.ID, models.Upvote)
		require.NoError(t, err)
		second, err := repo.Upsert(ctx, project.ID, voter.ID, models.Downvote)
		require.NoError(t, err)

		assert.Equal(t, models.Downvote, second.VoteType)
		assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)

		votes, err := repo.FindByProject(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, models.Downvote, votes[0].VoteType)
	})

	t.Run("concurrent votes from one builder leave one row", func(t *testing.T) {
		db := newTestDB(t)
		lead := createBuilder(t, db, "Ada")
		voter := createBuilder(t, db, "Grace")
		project := createProject(t, db, lead, "Compiler", models.StatusApproved, now)
		repo := NewVoteRepo(db)

		var g errgroup.Group
		for i := 0; i < 8; i++ {
			voteType := models.Upvote
			if i%2 == 1 {
				voteType = models.Downvote
			}
			g.Go(func() error {
				_, err := repo.Upsert(ctx, project.ID, voter.ID, voteType)
				return err
			})
		}
		require.NoError(t, g.Wait())

		votes, err := repo.FindByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, votes, 1)
	})

	t.Run("deleting a missing vote is not found", func(t *testing.T) {
		db := newTestDB(t)
		lead := createBuilder(t, db, "Ada")
		project := createProject(t, db, lead, "Compiler", models.StatusApproved, now)

		err := NewVoteRepo(db).Delete(ctx, project.ID, lead.ID)

		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
		assert.Equal(t, "Vote not found", err.Error())
	})

	t.Run("delete removes only the builder's vote", func(t *testing.T) {
		db := newTestDB(t)
		lead := createBuilder(t, db, "Ada")
		other := createBuilder(t, db, "Grace")
		project := createProject(t, db, lead, "Compiler", models.StatusApproved, now)
		repo := NewVoteRepo(db)

		_, err := repo.Upsert(ctx, project.ID, lead.ID, models.Upvote)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, project.ID, other.ID, models.Downvote)
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, project.ID, lead.ID))

		votes, err := repo.FindByProject(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, other.ID, votes[0].BuilderID)
	})
}
