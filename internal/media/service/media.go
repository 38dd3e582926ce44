package service

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// ProfileMediaUpdater persists new avatar/cover URLs on the owning user
// record after a successful upload.
type ProfileMediaUpdater interface {
	SetAvatar(ctx context.Context, userID int64, url string) error
	SetCover(ctx context.Context, userID int64, url string) error
}

// MediaService exposes the upload and deletion endpoints.
type MediaService struct {
	media      *biz.MediaUsecase
	profiles   ProfileMediaUpdater
	publicBase string
}

func NewMediaService(media *biz.MediaUsecase, profiles ProfileMediaUpdater, publicBaseURL string) *MediaService {
	return &MediaService{
		media:      media,
		profiles:   profiles,
		publicBase: publicBaseURL,
	}
}

// RegisterRoutes mounts the media endpoints; every route requires an
// authenticated user.
func (s *MediaService) RegisterRoutes(rg *gin.RouterGroup) {
	media := rg.Group("/media")
	{
		media.POST("/post-image", s.UploadPostImage)
		media.POST("/post-video", s.UploadPostVideo)
		media.POST("/avatar", s.UploadAvatar)
		media.POST("/cover", s.UploadCover)
		media.POST("/story", s.UploadStoryImage)
		media.POST("/story-video", s.UploadStoryVideo)
		media.DELETE("/file", s.DeleteFile)
	}
}

func (s *MediaService) UploadPostImage(c *gin.Context) {
	s.handleUpload(c, biz.KindPostImage, "image")
}

func (s *MediaService) UploadPostVideo(c *gin.Context) {
	userID := c.GetInt64("user_id")
	in, file, err := s.openUpload(c, "video")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer file.Close()

	up, thumbURL, err := s.media.UploadWithThumbnail(c.Request.Context(), in, file, biz.KindPostVideo, userID, "video")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	data := gin.H{"url": up.URL, "key": up.Key}
	if thumbURL != "" {
		data["thumbnail_url"] = thumbURL
	}
	response.Success(c, "Video uploaded successfully", data)
}

func (s *MediaService) UploadAvatar(c *gin.Context) {
	s.handleProfileUpload(c, biz.KindAvatar, "avatar", s.profiles.SetAvatar, "Avatar uploaded successfully")
}

func (s *MediaService) UploadCover(c *gin.Context) {
	s.handleProfileUpload(c, biz.KindCover, "cover", s.profiles.SetCover, "Cover uploaded successfully")
}

func (s *MediaService) UploadStoryImage(c *gin.Context) {
	s.handleUpload(c, biz.KindStoryImage, "image")
}

func (s *MediaService) UploadStoryVideo(c *gin.Context) {
	userID := c.GetInt64("user_id")
	in, file, err := s.openUpload(c, "video")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer file.Close()

	up, thumbURL, err := s.media.UploadWithThumbnail(c.Request.Context(), in, file, biz.KindStoryVideo, userID, "video")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	data := gin.H{"url": up.URL, "key": up.Key}
	if thumbURL != "" {
		data["thumbnail_url"] = thumbURL
	}
	response.Success(c, "Story video uploaded successfully", data)
}

type deleteFileRequest struct {
	URL string `json:"url" binding:"required"`
}

// DeleteFile removes an object by its public URL. Only objects under
// the caller's own directories may be removed.
func (s *MediaService) DeleteFile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req deleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"url": {"The url field is required."},
		})
		return
	}

	key := biz.KeyFromURL(req.URL, s.publicBase)
	if key == "" {
		response.HandleError(c, apperrors.New(apperrors.ErrMediaInvalidURL))
		return
	}
	if err := s.media.CheckOwnership(key, userID); err != nil {
		response.HandleError(c, err)
		return
	}

	found, err := s.media.DeleteByKey(c.Request.Context(), key)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !found {
		response.Success(c, "File not found or already deleted", gin.H{"deleted": false})
		return
	}
	response.Success(c, "File deleted successfully", gin.H{"deleted": true})
}

func (s *MediaService) handleUpload(c *gin.Context, kind biz.Kind, field string) {
	userID := c.GetInt64("user_id")
	in, file, err := s.openUpload(c, field)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer file.Close()

	up, err := s.media.Upload(c.Request.Context(), in, file, kind, userID, field)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "File uploaded successfully", gin.H{"url": up.URL, "key": up.Key})
}

func (s *MediaService) handleProfileUpload(c *gin.Context, kind biz.Kind, field string, persist func(context.Context, int64, string) error, message string) {
	userID := c.GetInt64("user_id")
	in, file, err := s.openUpload(c, field)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer file.Close()

	up, err := s.media.Upload(c.Request.Context(), in, file, kind, userID, field)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := persist(c.Request.Context(), userID, up.URL); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, message, gin.H{"url": up.URL, "key": up.Key})
}

// openUpload extracts the multipart file for a field and builds the
// validation input. The optional "extension" form value overrides
// filename parsing.
func (s *MediaService) openUpload(c *gin.Context, field string) (biz.Incoming, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return biz.Incoming{}, nil, apperrors.NewField(apperrors.ErrMediaMissingFile, field,
				"The "+field+" field is required.")
		}
		return biz.Incoming{}, nil, apperrors.NewField(apperrors.ErrMediaMissingFile, field,
			"The "+field+" field is required.")
	}
	file, err := fh.Open()
	if err != nil {
		return biz.Incoming{}, nil, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}
	in := biz.Incoming{
		Filename:    fh.Filename,
		Extension:   c.PostForm("extension"),
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	return in, file, nil
}
