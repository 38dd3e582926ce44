package biz

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

const testPublicBase = "https://s3.example.com/date-api"

type fakeStore struct {
	objects  map[string]bool
	deletes  []string
	onDelete func()
}

func newFakeStore(keys ...string) *fakeStore {
	f := &fakeStore{objects: make(map[string]bool)}
	for _, k := range keys {
		f.objects[k] = true
	}
	return f
}

func (f *fakeStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	f.objects[key] = true
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	return f.objects[key], nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	if f.onDelete != nil {
		f.onDelete()
	}
	return nil
}

func (f *fakeStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return testPublicBase + "/" + key
}

func (f *fakeStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return testPublicBase + "/" + key + "?sig", nil
}

type fakeStoryRepo struct {
	stories map[int64]*model.Story
	views   map[[2]int64]bool
	nextID  int64
	purged  []int64
	onPurge func()
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{
		stories: make(map[int64]*model.Story),
		views:   make(map[[2]int64]bool),
		nextID:  1,
	}
}

func (f *fakeStoryRepo) Create(_ context.Context, story *model.Story) error {
	story.ID = f.nextID
	f.nextID++
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	cp := *story
	f.stories[story.ID] = &cp
	return nil
}

func (f *fakeStoryRepo) FindByID(_ context.Context, id int64) (*model.Story, error) {
	if s, ok := f.stories[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStoryRepo) FeedForViewer(_ context.Context, _ int64, since time.Time, _, _ int) ([]*model.Story, error) {
	var out []*model.Story
	for _, s := range f.stories {
		if s.CreatedAt.After(since) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStoryRepo) ByUser(_ context.Context, userID int64, since time.Time, _, _ int) ([]*model.Story, error) {
	var out []*model.Story
	for _, s := range f.stories {
		if s.UserID == userID && s.CreatedAt.After(since) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStoryRepo) Purge(_ context.Context, storyID int64) error {
	delete(f.stories, storyID)
	f.purged = append(f.purged, storyID)
	if f.onPurge != nil {
		f.onPurge()
	}
	return nil
}

func (f *fakeStoryRepo) AddView(_ context.Context, storyID, viewerID int64) (bool, error) {
	key := [2]int64{storyID, viewerID}
	if f.views[key] {
		return false, nil
	}
	f.views[key] = true
	f.stories[storyID].ViewCount++
	return true, nil
}

func newTestStories(repo StoryRepo, store *fakeStore) *StoryUsecase {
	media := mediabiz.NewMediaUsecase(store, mediabiz.NewPlaceholderThumbnailer(store, 0), logger.NewNop())
	return NewStoryUsecase(repo, media, testPublicBase, logger.NewNop())
}

func TestClampDuration(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		requested int64
		want      int64
	}{
		{"image default", "image", 0, 86400},
		{"image below floor", "image", 60, 3600},
		{"image above ceiling", "image", 100000, 86400},
		{"image in range", "image", 7200, 7200},
		{"video default", "video", 0, 1440},
		{"video below floor", "video", 1, 5},
		{"video above ceiling", "video", 50000, 43200},
		{"video in range", "video", 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampDuration(tt.mediaType, tt.requested))
		})
	}
}

func TestStoryExpiry(t *testing.T) {
	now := time.Now()

	t.Run("image story expires after duration seconds", func(t *testing.T) {
		story := &model.Story{MediaType: "image", Duration: 3600, CreatedAt: now.Add(-2 * time.Hour)}
		assert.True(t, IsExpired(story, now))

		story.CreatedAt = now.Add(-30 * time.Minute)
		assert.False(t, IsExpired(story, now))
	})

	t.Run("video story duration counts minutes", func(t *testing.T) {
		story := &model.Story{MediaType: "video", Duration: 60, CreatedAt: now.Add(-30 * time.Minute)}
		assert.False(t, IsExpired(story, now))

		story.CreatedAt = now.Add(-90 * time.Minute)
		assert.True(t, IsExpired(story, now))
	})
}

func TestStoryGet(t *testing.T) {
	ctx := context.Background()

	t.Run("live story carries remaining time", func(t *testing.T) {
		repo := newFakeStoryRepo()
		uc := newTestStories(repo, newFakeStore())

		repo.stories[1] = &model.Story{
			ID: 1, UserID: 42, MediaType: "image", Duration: 3600,
			CreatedAt: time.Now().Add(-30 * time.Minute),
		}
		repo.nextID = 2

		view, err := uc.Get(ctx, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1800, view.RemainingSeconds, 5)
	})

	t.Run("expired story reads as gone", func(t *testing.T) {
		repo := newFakeStoryRepo()
		uc := newTestStories(repo, newFakeStore())

		repo.stories[1] = &model.Story{
			ID: 1, UserID: 42, MediaType: "image", Duration: 3600,
			CreatedAt: time.Now().Add(-2 * time.Hour),
		}

		_, err := uc.Get(ctx, 1)
		assert.Equal(t, apperrors.ErrStoryExpired, apperrors.ExtractCode(err))
	})

	t.Run("unknown story", func(t *testing.T) {
		uc := newTestStories(newFakeStoryRepo(), newFakeStore())
		_, err := uc.Get(ctx, 99)
		assert.Equal(t, apperrors.ErrStoryNotFound, apperrors.ExtractCode(err))
	})
}

func TestStoryFeedFiltersExpired(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStoryRepo()
	uc := newTestStories(repo, newFakeStore())

	repo.stories[1] = &model.Story{
		ID: 1, UserID: 42, MediaType: "image", Duration: 3600,
		CreatedAt: time.Now().Add(-10 * time.Minute),
	}
	repo.stories[2] = &model.Story{
		ID: 2, UserID: 42, MediaType: "image", Duration: 3600,
		CreatedAt: time.Now().Add(-3 * time.Hour),
	}

	feed, err := uc.Feed(ctx, 42, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, int64(1), feed[0].ID)
}

func TestStoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores with clamped duration", func(t *testing.T) {
		uc := newTestStories(newFakeStoryRepo(), newFakeStore("stories/42/a.jpg"))

		story, err := uc.Create(ctx, 42, CreateStoryInput{
			MediaURL:  testPublicBase + "/stories/42/a.jpg",
			MediaType: "image",
			Duration:  10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3600), story.Duration)
	})

	t.Run("rejects media owned by someone else", func(t *testing.T) {
		uc := newTestStories(newFakeStoryRepo(), newFakeStore())

		_, err := uc.Create(ctx, 42, CreateStoryInput{
			MediaURL:  testPublicBase + "/stories/43/a.jpg",
			MediaType: "image",
		})
		assert.Equal(t, apperrors.ErrMediaNotOwned, apperrors.ExtractCode(err))
	})
}

func TestStoryView(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStoryRepo()
	uc := newTestStories(repo, newFakeStore())

	repo.stories[1] = &model.Story{
		ID: 1, UserID: 42, MediaType: "image", Duration: 3600,
		CreatedAt: time.Now(),
	}

	require.NoError(t, uc.View(ctx, 7, 1))
	require.NoError(t, uc.View(ctx, 7, 1))
	assert.Equal(t, int64(1), repo.stories[1].ViewCount, "repeat views do not double count")
}

func TestStoryDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row and media", func(t *testing.T) {
		repo := newFakeStoryRepo()
		store := newFakeStore("video-stories/42/clip.mp4", "thumbnails/42/t.svg")
		uc := newTestStories(repo, store)

		story := &model.Story{
			UserID:       42,
			MediaType:    "video",
			Duration:     1440,
			MediaURL:     testPublicBase + "/video-stories/42/clip.mp4",
			ThumbnailURL: testPublicBase + "/thumbnails/42/t.svg",
		}
		require.NoError(t, repo.Create(ctx, story))

		require.NoError(t, uc.Delete(ctx, 42, story.ID))
		assert.Equal(t, []int64{story.ID}, repo.purged)
		assert.ElementsMatch(t, []string{"video-stories/42/clip.mp4", "thumbnails/42/t.svg"}, store.deletes)
	})

	t.Run("media objects go before the row", func(t *testing.T) {
		repo := newFakeStoryRepo()
		store := newFakeStore("stories/42/a.jpg")
		uc := newTestStories(repo, store)

		var order []string
		store.onDelete = func() { order = append(order, "media") }
		repo.onPurge = func() { order = append(order, "row") }

		story := &model.Story{
			UserID:    42,
			MediaType: "image",
			Duration:  3600,
			MediaURL:  testPublicBase + "/stories/42/a.jpg",
		}
		require.NoError(t, repo.Create(ctx, story))

		require.NoError(t, uc.Delete(ctx, 42, story.ID))
		assert.Equal(t, []string{"media", "row"}, order)
	})

	t.Run("only the owner may delete", func(t *testing.T) {
		repo := newFakeStoryRepo()
		uc := newTestStories(repo, newFakeStore())

		story := &model.Story{UserID: 42, MediaType: "image", Duration: 3600}
		require.NoError(t, repo.Create(ctx, story))

		err := uc.Delete(ctx, 43, story.ID)
		assert.Equal(t, apperrors.ErrForbidden, apperrors.ExtractCode(err))
	})
}
