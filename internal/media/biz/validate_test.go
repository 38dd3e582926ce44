package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
)

func TestResolveExtension(t *testing.T) {
	tests := []struct {
		name string
		in   Incoming
		kind Kind
		want string
	}{
		{
			name: "declared extension wins over filename",
			in:   Incoming{Extension: "png", Filename: "photo.jpg"},
			kind: KindPostImage,
			want: "png",
		},
		{
			name: "declared extension normalized",
			in:   Incoming{Extension: " .JPG "},
			kind: KindPostImage,
			want: "jpg",
		},
		{
			name: "filename fallback",
			in:   Incoming{Filename: "holiday.JPEG"},
			kind: KindPostImage,
			want: "jpeg",
		},
		{
			name: "mime fallback for images",
			in:   Incoming{Filename: "blob", ContentType: "image/webp"},
			kind: KindPostImage,
			want: "webp",
		},
		{
			name: "mime fallback for videos",
			in:   Incoming{Filename: "clip", ContentType: "video/quicktime"},
			kind: KindPostVideo,
			want: "mov",
		},
		{
			name: "video mime not used for image kinds",
			in:   Incoming{Filename: "clip", ContentType: "video/mp4"},
			kind: KindPostImage,
			want: "",
		},
		{
			name: "trailing dot yields nothing",
			in:   Incoming{Filename: "archive."},
			kind: KindPostImage,
			want: "",
		},
		{
			name: "no source",
			in:   Incoming{Filename: "noext"},
			kind: KindPostVideo,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveExtension(tt.in, tt.kind))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts a valid image", func(t *testing.T) {
		ext, err := Validate(Incoming{Filename: "a.png", Size: 1024}, KindPostImage, "image")
		require.NoError(t, err)
		assert.Equal(t, "png", ext)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := Validate(Incoming{Filename: "a.png", Size: 0}, KindPostImage, "image")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrMediaMissingFile, apperrors.ExtractCode(err))
	})

	t.Run("rejects oversized avatar", func(t *testing.T) {
		_, err := Validate(Incoming{Filename: "a.jpg", Size: MaxAvatarSize + 1}, KindAvatar, "avatar")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrMediaTooLarge, apperrors.ExtractCode(err))
		assert.Equal(t, "avatar", apperrors.GetField(err))
	})

	t.Run("accepts avatar at the exact ceiling", func(t *testing.T) {
		_, err := Validate(Incoming{Filename: "a.jpg", Size: MaxAvatarSize}, KindAvatar, "avatar")
		require.NoError(t, err)
	})

	t.Run("rejects wrong extension for kind", func(t *testing.T) {
		_, err := Validate(Incoming{Filename: "clip.mp4", Size: 1024}, KindPostImage, "image")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrMediaInvalidType, apperrors.ExtractCode(err))
	})

	t.Run("rejects unresolvable extension", func(t *testing.T) {
		_, err := Validate(Incoming{Filename: "blob", Size: 1024}, KindPostVideo, "video")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrMediaInvalidType, apperrors.ExtractCode(err))
	})

	t.Run("video ceiling is larger than image ceiling", func(t *testing.T) {
		size := int64(50 * 1024 * 1024)
		ext, err := Validate(Incoming{Filename: "clip.mkv", Size: size}, KindStoryVideo, "video")
		require.NoError(t, err)
		assert.Equal(t, "mkv", ext)
	})
}
