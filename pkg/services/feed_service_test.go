package services

import (
	"context"
	"testing"

	"linkup/pkg/cache"
	"linkup/pkg/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedServiceListAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p1, _ := f.posts.Create(ctx, f.ann.ID, "first", "")
	p2, _ := f.posts.Create(ctx, f.bob.ID, "second", "")
	p3, _ := f.posts.Create(ctx, f.ann.ID, "third", "")

	t.Run("newest first with resolved authors", func(t *testing.T) {
		all, err := f.feed.ListAll(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{p3.ID, p2.ID, p1.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
		assert.Equal(t, "Ann", all[0].User.Name)
		assert.Equal(t, "Bob", all[1].User.Name)
	})

	t.Run("user feed preserves relative order", func(t *testing.T) {
		anns, err := f.feed.ListByUser(ctx, f.ann.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, anns, 2)
		assert.Equal(t, p3.ID, anns[0].ID)
		assert.Equal(t, p1.ID, anns[1].ID)
	})
}

func TestFeedServiceInvalidUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.posts.Create(ctx, f.ann.ID, "hello", "")

	// Malformed ids are "no results", never an error.
	posts, err := f.feed.ListByUser(ctx, "not-a-uuid", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFeedServiceCaching(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	store := cache.NewMemory()
	posts := NewPostService(repo, store)
	feed := NewFeedService(repo, store)

	ann, err := repo.CreateUser(ctx, "Ann", "ann@example.com", "hash", "")
	require.NoError(t, err)
	posts.Create(ctx, ann.ID, "hello", "")

	first, err := feed.ListAll(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write that bypasses the service leaves the cached page stale.
	_, err = repo.Create(ctx, ann.ID, "uncached", "")
	require.NoError(t, err)

	cached, err := feed.ListAll(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// A service mutation invalidates, so the next read sees everything.
	_, err = posts.Create(ctx, ann.ID, "fresh", "")
	require.NoError(t, err)

	fresh, err := feed.ListAll(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}
