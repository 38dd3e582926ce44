package service

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/auth/biz"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// AuthService exposes registration and session endpoints.
type AuthService struct {
	auth *biz.AuthUsecase
}

func NewAuthService(auth *biz.AuthUsecase) *AuthService {
	return &AuthService{auth: auth}
}

// RegisterPublicRoutes mounts the endpoints that need no token.
func (s *AuthService) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
	}
}

// RegisterProtectedRoutes mounts the endpoints behind auth middleware.
func (s *AuthService) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", s.Logout)
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"max=100"`
}

func (s *AuthService) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", bindingErrors(err))
		return
	}

	user, token, err := s.auth.Register(c.Request.Context(), biz.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Registration successful", gin.H{
		"user":  user,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", bindingErrors(err))
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

func (s *AuthService) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token != "" {
		if err := s.auth.Logout(c.Request.Context(), token); err != nil {
			response.HandleError(c, err)
			return
		}
	}
	response.Success(c, "Logged out successfully", nil)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// bindingErrors flattens gin binding failures into the field error map
// the response envelope carries.
func bindingErrors(err error) map[string][]string {
	return map[string][]string{"request": {err.Error()}}
}
