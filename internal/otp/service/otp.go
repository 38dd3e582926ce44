package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/otp/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// OtpService exposes email verification endpoints. All of them are
// public; rate limiting happens in middleware.
type OtpService struct {
	otp *biz.OtpUsecase
}

func NewOtpService(otp *biz.OtpUsecase) *OtpService {
	return &OtpService{otp: otp}
}

func (s *OtpService) RegisterRoutes(rg *gin.RouterGroup) {
	otp := rg.Group("/otp")
	{
		otp.POST("/send", s.Send)
		otp.POST("/verify", s.Verify)
		otp.POST("/resend", s.Resend)
		otp.GET("/status", s.GetStatus)
	}
}

type sendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *OtpService) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"email": {"A valid email address is required."},
		})
		return
	}

	if err := s.otp.Send(c.Request.Context(), req.Email); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification code sent", nil)
}

func (s *OtpService) Resend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"email": {"A valid email address is required."},
		})
		return
	}

	if err := s.otp.Resend(c.Request.Context(), req.Email); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification code sent", nil)
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

func (s *OtpService) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"code": {"A valid email and 6-digit code are required."},
		})
		return
	}

	remaining, err := s.otp.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if apperrors.ExtractCode(err) == apperrors.ErrOtpInvalid {
			c.JSON(http.StatusBadRequest, response.Response{
				Status:  "error",
				Message: apperrors.GetMessage(apperrors.ErrOtpInvalid),
				Data:    gin.H{"attempts_remaining": remaining},
			})
			return
		}
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Email verified successfully", nil)
}

func (s *OtpService) GetStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"email": {"The email query parameter is required."},
		})
		return
	}

	status, err := s.otp.GetStatus(c.Request.Context(), email)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !status.Exists {
		response.NotFound(c, "No verification code found for this email")
		return
	}
	response.Success(c, "Verification status", status)
}
