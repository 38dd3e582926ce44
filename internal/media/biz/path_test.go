package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	assert.Equal(t, "posts/42", Dir(KindPostImage, 42))
	assert.Equal(t, "video-stories/7", Dir(KindStoryVideo, 7))
	assert.Equal(t, "avatars/1", Dir(KindAvatar, 1))
	assert.Equal(t, "verification/99", Dir(KindVerification, 99))
}

func TestNewKey(t *testing.T) {
	key, err := NewKey(KindPostImage, 42, "jpg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "posts/42/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	name := strings.TrimSuffix(strings.TrimPrefix(key, "posts/42/"), ".jpg")
	assert.Len(t, name, 32)

	other, err := NewKey(KindPostImage, 42, "jpg")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestOwnsKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		ownerID int64
		want    bool
	}{
		{"own post image", "posts/42/abc.jpg", 42, true},
		{"own nested object", "verification/42/front.jpg", 42, true},
		{"other owner", "posts/43/abc.jpg", 42, false},
		{"prefix of another id does not match", "posts/421/abc.jpg", 42, false},
		{"id appearing in filename does not match", "posts/7/42.jpg", 42, false},
		{"too few segments", "posts/42", 42, false},
		{"empty key", "", 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnsKey(tt.key, tt.ownerID))
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	base := "https://s3.example.com/date-api"

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain public url", base + "/posts/42/abc.jpg", "posts/42/abc.jpg"},
		{"presigned query stripped", base + "/thumbnails/42/x.svg?X-Amz-Expires=604800", "thumbnails/42/x.svg"},
		{"foreign host", "https://evil.example.com/posts/42/abc.jpg", ""},
		{"base only", base + "/", ""},
		{"directory url", base + "/posts/42/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFromURL(tt.url, base))
		})
	}

	t.Run("trailing slash on base handled", func(t *testing.T) {
		assert.Equal(t, "posts/1/a.png", KeyFromURL(base+"/posts/1/a.png", base+"/"))
	})
}
