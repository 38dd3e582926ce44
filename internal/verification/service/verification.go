package service

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/response"
	"github.com/codeskytz/date-api/internal/verification/biz"
)

// VerificationService exposes the user-facing verification endpoints.
// Review endpoints live under the admin surface.
type VerificationService struct {
	verification *biz.VerificationUsecase
}

func NewVerificationService(verification *biz.VerificationUsecase) *VerificationService {
	return &VerificationService{verification: verification}
}

func (s *VerificationService) RegisterRoutes(rg *gin.RouterGroup) {
	v := rg.Group("/verification")
	{
		v.POST("", s.Submit)
		v.GET("/status", s.Status)
		v.DELETE("", s.Cancel)
	}
}

func (s *VerificationService) Submit(c *gin.Context) {
	userID := c.GetInt64("user_id")

	vtype := c.PostForm("type")
	docs := make([]biz.Document, 0, 3)
	files := make([]multipart.File, 0, 3)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	for _, field := range []string{"document_front", "document_back", "selfie"} {
		fh, err := c.FormFile(field)
		if err != nil {
			response.HandleError(c, apperrors.NewField(apperrors.ErrMediaMissingFile, field,
				"The "+field+" field is required."))
			return
		}
		file, err := fh.Open()
		if err != nil {
			response.HandleError(c, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed))
			return
		}
		files = append(files, file)
		docs = append(docs, biz.Document{
			Field: field,
			Meta: mediabiz.Incoming{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			},
			Reader: file,
		})
	}

	v, err := s.verification.Submit(c.Request.Context(), userID, vtype, docs[0], docs[1], docs[2])
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Verification request submitted", v)
}

func (s *VerificationService) Status(c *gin.Context) {
	v, err := s.verification.Status(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification status", v)
}

func (s *VerificationService) Cancel(c *gin.Context) {
	if err := s.verification.Cancel(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification request cancelled", nil)
}
