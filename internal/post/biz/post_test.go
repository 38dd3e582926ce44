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
			f.deletes = append(f.deletes, key)
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

type fakePostRepo struct {
	posts   map[int64]*model.Post
	nextID  int64
	purged  []int64
	onPurge func()
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*model.Post), nextID: 1}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	post.ID = f.nextID
	f.nextID++
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, id int64) (*model.Post, error) {
	if p, ok := f.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePostRepo) Feed(_ context.Context, _ int64, _, _ int) ([]*model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) ByUser(_ context.Context, _ int64, _ bool, _, _ int) ([]*model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) Search(_ context.Context, _ string, _, _ int) ([]*model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) Purge(_ context.Context, postID int64) error {
	delete(f.posts, postID)
	f.purged = append(f.purged, postID)
	if f.onPurge != nil {
		f.onPurge()
	}
	return nil
}

func (f *fakePostRepo) Like(_ context.Context, _, _ int64) (bool, error)      { return true, nil }
func (f *fakePostRepo) Unlike(_ context.Context, _, _ int64) error            { return nil }
func (f *fakePostRepo) AddComment(_ context.Context, _ *model.PostComment) error { return nil }
func (f *fakePostRepo) Comments(_ context.Context, _ int64, _, _ int) ([]*model.PostComment, error) {
	return nil, nil
}
func (f *fakePostRepo) Save(_ context.Context, _, _ int64) (bool, error)  { return true, nil }
func (f *fakePostRepo) Unsave(_ context.Context, _, _ int64) error        { return nil }
func (f *fakePostRepo) SavedByUser(_ context.Context, _ int64, _, _ int) ([]*model.Post, error) {
	return nil, nil
}
func (f *fakePostRepo) SetFlag(_ context.Context, postID int64, flagged bool, reason string, at *time.Time) error {
	if p, ok := f.posts[postID]; ok {
		p.Flagged = flagged
		p.FlagReason = reason
		p.FlaggedAt = at
	}
	return nil
}

type notified struct {
	userID  int64
	actorID int64
	event   string
	postID  *int64
}

type fakeNotifier struct {
	events []notified
}

func (f *fakeNotifier) Notify(_ context.Context, userID, actorID int64, event string, postID *int64) {
	f.events = append(f.events, notified{userID: userID, actorID: actorID, event: event, postID: postID})
}

func newTestPosts(repo PostRepo, store *fakeStore) *PostUsecase {
	return newTestPostsNotifying(repo, store, &fakeNotifier{})
}

func newTestPostsNotifying(repo PostRepo, store *fakeStore, notifier *fakeNotifier) *PostUsecase {
	media := mediabiz.NewMediaUsecase(store, mediabiz.NewPlaceholderThumbnailer(store, 0), logger.NewNop())
	return NewPostUsecase(repo, media, notifier, testPublicBase, logger.NewNop())
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("text only post", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		post, err := uc.Create(ctx, 42, CreatePostInput{Content: "hello"})
		require.NoError(t, err)
		assert.Equal(t, int64(42), post.UserID)
	})

	t.Run("post with owned media", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore("posts/42/abc.jpg"))
		post, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:  testPublicBase + "/posts/42/abc.jpg",
			MediaType: "image",
		})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
	})

	t.Run("video post marked as reel", func(t *testing.T) {
		repo := newFakePostRepo()
		uc := newTestPosts(repo, newFakeStore("videos/42/abc.mp4"))
		post, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:  testPublicBase + "/videos/42/abc.mp4",
			MediaType: "video",
			IsReel:    true,
		})
		require.NoError(t, err)
		assert.True(t, repo.posts[post.ID].IsReel)
	})

	t.Run("rejects reel without video", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore("posts/42/abc.jpg"))
		_, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:  testPublicBase + "/posts/42/abc.jpg",
			MediaType: "image",
			IsReel:    true,
		})
		assert.Equal(t, apperrors.ErrPostInvalidInput, apperrors.ExtractCode(err))
	})

	t.Run("rejects media owned by someone else", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		_, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:  testPublicBase + "/posts/43/abc.jpg",
			MediaType: "image",
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrMediaNotOwned, apperrors.ExtractCode(err))
	})

	t.Run("rejects thumbnail owned by someone else", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		_, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:     testPublicBase + "/videos/42/abc.mp4",
			MediaType:    "video",
			ThumbnailURL: testPublicBase + "/thumbnails/43/x.svg",
		})
		assert.Equal(t, apperrors.ErrMediaNotOwned, apperrors.ExtractCode(err))
	})

	t.Run("rejects foreign media url", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		_, err := uc.Create(ctx, 42, CreatePostInput{
			MediaURL:  "https://elsewhere.example.com/posts/42/abc.jpg",
			MediaType: "image",
		})
		assert.Equal(t, apperrors.ErrMediaInvalidURL, apperrors.ExtractCode(err))
	})

	t.Run("rejects empty post", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		_, err := uc.Create(ctx, 42, CreatePostInput{Content: "   "})
		assert.Equal(t, apperrors.ErrPostInvalidInput, apperrors.ExtractCode(err))
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row and media objects", func(t *testing.T) {
		repo := newFakePostRepo()
		store := newFakeStore("videos/42/clip.mp4", "thumbnails/42/t.svg")
		uc := newTestPosts(repo, store)

		post := &model.Post{
			UserID:       42,
			MediaURL:     testPublicBase + "/videos/42/clip.mp4",
			ThumbnailURL: testPublicBase + "/thumbnails/42/t.svg",
		}
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, uc.Delete(ctx, 42, post.ID))
		assert.Equal(t, []int64{post.ID}, repo.purged)
		assert.ElementsMatch(t, []string{"videos/42/clip.mp4", "thumbnails/42/t.svg"}, store.deletes)
	})

	t.Run("media objects go before the row", func(t *testing.T) {
		repo := newFakePostRepo()
		store := newFakeStore("videos/42/clip.mp4", "thumbnails/42/t.svg")
		uc := newTestPosts(repo, store)

		var order []string
		store.onDelete = func() { order = append(order, "media") }
		repo.onPurge = func() { order = append(order, "row") }

		post := &model.Post{
			UserID:       42,
			MediaURL:     testPublicBase + "/videos/42/clip.mp4",
			ThumbnailURL: testPublicBase + "/thumbnails/42/t.svg",
		}
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, uc.Delete(ctx, 42, post.ID))
		assert.Equal(t, []string{"media", "media", "row"}, order)
	})

	t.Run("text post touches no storage", func(t *testing.T) {
		repo := newFakePostRepo()
		store := newFakeStore()
		uc := newTestPosts(repo, store)

		post := &model.Post{UserID: 42, Content: "text only"}
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, uc.Delete(ctx, 42, post.ID))
		assert.Empty(t, store.deletes)
	})

	t.Run("missing media object does not fail the delete", func(t *testing.T) {
		repo := newFakePostRepo()
		store := newFakeStore()
		uc := newTestPosts(repo, store)

		post := &model.Post{UserID: 42, MediaURL: testPublicBase + "/posts/42/gone.jpg"}
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, uc.Delete(ctx, 42, post.ID))
		assert.Equal(t, []int64{post.ID}, repo.purged)
	})

	t.Run("only the owner may delete", func(t *testing.T) {
		repo := newFakePostRepo()
		uc := newTestPosts(repo, newFakeStore())

		post := &model.Post{UserID: 42, Content: "mine"}
		require.NoError(t, repo.Create(ctx, post))

		err := uc.Delete(ctx, 43, post.ID)
		assert.Equal(t, apperrors.ErrForbidden, apperrors.ExtractCode(err))
		assert.Empty(t, repo.purged)
	})

	t.Run("force delete ignores ownership", func(t *testing.T) {
		repo := newFakePostRepo()
		uc := newTestPosts(repo, newFakeStore())

		post := &model.Post{UserID: 42, Content: "mine"}
		require.NoError(t, repo.Create(ctx, post))

		require.NoError(t, uc.ForceDelete(ctx, post.ID))
		assert.Equal(t, []int64{post.ID}, repo.purged)
	})

	t.Run("unknown post", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		err := uc.Delete(ctx, 42, 999)
		assert.Equal(t, apperrors.ErrPostNotFound, apperrors.ExtractCode(err))
	})
}

func TestLike(t *testing.T) {
	ctx := context.Background()

	t.Run("first like notifies the owner", func(t *testing.T) {
		repo := newFakePostRepo()
		notifier := &fakeNotifier{}
		uc := newTestPostsNotifying(repo, newFakeStore(), notifier)

		post := &model.Post{UserID: 42, Content: "hello"}
		require.NoError(t, repo.Create(ctx, post))

		created, err := uc.Like(ctx, 7, post.ID)
		require.NoError(t, err)
		assert.True(t, created)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, int64(42), notifier.events[0].userID)
		assert.Equal(t, int64(7), notifier.events[0].actorID)
		assert.Equal(t, model.NotificationLike, notifier.events[0].event)
		require.NotNil(t, notifier.events[0].postID)
		assert.Equal(t, post.ID, *notifier.events[0].postID)
	})

	t.Run("unknown post", func(t *testing.T) {
		uc := newTestPosts(newFakePostRepo(), newFakeStore())
		_, err := uc.Like(ctx, 7, 999)
		assert.Equal(t, apperrors.ErrPostNotFound, apperrors.ExtractCode(err))
	})
}

func TestComment(t *testing.T) {
	ctx := context.Background()

	t.Run("comment notifies the owner", func(t *testing.T) {
		repo := newFakePostRepo()
		notifier := &fakeNotifier{}
		uc := newTestPostsNotifying(repo, newFakeStore(), notifier)

		post := &model.Post{UserID: 42, Content: "hello"}
		require.NoError(t, repo.Create(ctx, post))

		comment, err := uc.Comment(ctx, 7, post.ID, "nice")
		require.NoError(t, err)
		assert.Equal(t, "nice", comment.Content)

		require.Len(t, notifier.events, 1)
		assert.Equal(t, model.NotificationComment, notifier.events[0].event)
	})

	t.Run("rejects empty comment", func(t *testing.T) {
		repo := newFakePostRepo()
		uc := newTestPosts(repo, newFakeStore())

		post := &model.Post{UserID: 42, Content: "hello"}
		require.NoError(t, repo.Create(ctx, post))

		_, err := uc.Comment(ctx, 7, post.ID, "   ")
		assert.Equal(t, apperrors.ErrPostInvalidInput, apperrors.ExtractCode(err))
	})
}

func TestFlag(t *testing.T) {
	ctx := context.Background()
	repo := newFakePostRepo()
	uc := newTestPosts(repo, newFakeStore())

	post := &model.Post{UserID: 42, Content: "spam"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, uc.Flag(ctx, post.ID, "spam content"))
	assert.True(t, repo.posts[post.ID].Flagged)
	assert.Equal(t, "spam content", repo.posts[post.ID].FlagReason)
	require.NotNil(t, repo.posts[post.ID].FlaggedAt)
	assert.WithinDuration(t, time.Now(), *repo.posts[post.ID].FlaggedAt, time.Minute)

	require.NoError(t, uc.Unflag(ctx, post.ID))
	assert.False(t, repo.posts[post.ID].Flagged)
	assert.Empty(t, repo.posts[post.ID].FlagReason)
	assert.Nil(t, repo.posts[post.ID].FlaggedAt)
}
