package biz

// Kind identifies a category of uploaded media. Each kind has its own
// storage root, size ceiling, and allowed extensions.
type Kind int

const (
	KindPostImage Kind = iota
	KindPostVideo
	KindStoryImage
	KindStoryVideo
	KindAvatar
	KindCover
	KindThumbnail
	KindVerification
)

// Default size ceilings in bytes. Deployments can raise or lower them
// through SetSizeLimits at startup.
var (
	MaxAvatarSize int64 = 2 * 1024 * 1024
	MaxCoverSize  int64 = 5 * 1024 * 1024
	MaxImageSize  int64 = 5 * 1024 * 1024
	MaxVideoSize  int64 = 100 * 1024 * 1024
)

// SetSizeLimits overrides the default upload ceilings. Zero values keep
// the current limit. Call before the server starts accepting uploads.
func SetSizeLimits(avatar, cover, image, video int64) {
	if avatar > 0 {
		MaxAvatarSize = avatar
	}
	if cover > 0 {
		MaxCoverSize = cover
	}
	if image > 0 {
		MaxImageSize = image
	}
	if video > 0 {
		MaxVideoSize = video
	}
}

var kindRoots = map[Kind]string{
	KindPostImage:    "posts",
	KindPostVideo:    "videos",
	KindStoryImage:   "stories",
	KindStoryVideo:   "video-stories",
	KindAvatar:       "avatars",
	KindCover:        "covers",
	KindThumbnail:    "thumbnails",
	KindVerification: "verification",
}

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var videoExtensions = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mov":  true,
	"avi":  true,
	"mkv":  true,
}

// Root returns the top-level directory for this kind
func (k Kind) Root() string {
	return kindRoots[k]
}

// IsVideo reports whether the kind carries video content
func (k Kind) IsVideo() bool {
	return k == KindPostVideo || k == KindStoryVideo
}

// IsSingleton reports whether an owner holds at most one live object of
// this kind. Uploading a new one replaces everything under the owner's
// directory.
func (k Kind) IsSingleton() bool {
	return k == KindAvatar || k == KindCover
}

// MaxSize returns the upload size ceiling in bytes for this kind
func (k Kind) MaxSize() int64 {
	switch k {
	case KindAvatar:
		return MaxAvatarSize
	case KindCover:
		return MaxCoverSize
	case KindPostVideo, KindStoryVideo:
		return MaxVideoSize
	default:
		return MaxImageSize
	}
}

// AllowedExtensions returns the extension allow-list for this kind
func (k Kind) AllowedExtensions() map[string]bool {
	if k.IsVideo() {
		return videoExtensions
	}
	return imageExtensions
}

func (k Kind) String() string {
	switch k {
	case KindPostImage:
		return "post_image"
	case KindPostVideo:
		return "post_video"
	case KindStoryImage:
		return "story_image"
	case KindStoryVideo:
		return "story_video"
	case KindAvatar:
		return "avatar"
	case KindCover:
		return "cover"
	case KindThumbnail:
		return "thumbnail"
	case KindVerification:
		return "verification"
	default:
		return "unknown"
	}
}
