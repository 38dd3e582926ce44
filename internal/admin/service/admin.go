package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	adminbiz "github.com/codeskytz/date-api/internal/admin/biz"
	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/response"
	postbiz "github.com/codeskytz/date-api/internal/post/biz"
	userbiz "github.com/codeskytz/date-api/internal/user/biz"
	verificationbiz "github.com/codeskytz/date-api/internal/verification/biz"
)

// AdminService exposes the moderation console.
type AdminService struct {
	admin        *adminbiz.AdminUsecase
	users        *userbiz.UserUsecase
	posts        *postbiz.PostUsecase
	verification *verificationbiz.VerificationUsecase
}

func NewAdminService(admin *adminbiz.AdminUsecase, users *userbiz.UserUsecase, posts *postbiz.PostUsecase, verification *verificationbiz.VerificationUsecase) *AdminService {
	return &AdminService{
		admin:        admin,
		users:        users,
		posts:        posts,
		verification: verification,
	}
}

func (s *AdminService) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.POST("/login", s.Login)

	protected := admin.Group("", s.requireAdmin())
	{
		protected.GET("/dashboard", s.Dashboard)
		protected.GET("/activity", s.Activity)

		protected.GET("/users", s.ListUsers)
		protected.GET("/users/:id", s.ShowUser)
		protected.PUT("/users/:id", s.UpdateUser)
		protected.POST("/users/:id/ban", s.BanUser)
		protected.DELETE("/users/:id/ban", s.UnbanUser)
		protected.DELETE("/users/:id", s.DeleteUser)

		protected.GET("/posts", s.ListPosts)
		protected.GET("/posts/flagged", s.FlaggedPosts)
		protected.GET("/posts/:id", s.ShowPost)
		protected.POST("/posts/:id/flag", s.FlagPost)
		protected.DELETE("/posts/:id/flag", s.UnflagPost)
		protected.DELETE("/posts/:id", s.DeletePost)

		protected.GET("/verifications", s.VerificationQueue)
		protected.GET("/verifications/:id", s.ShowVerification)
		protected.POST("/verifications/:id/approve", s.ApproveVerification)
		protected.POST("/verifications/:id/reject", s.RejectVerification)

		protected.GET("/settings", s.Settings)
		protected.PUT("/settings", s.UpdateSetting)
	}
}

// requireAdmin validates the admin session token on every console
// route.
func (s *AdminService) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "Unauthenticated.")
			c.Abort()
			return
		}
		email, err := s.admin.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "Unauthenticated.")
			c.Abort()
			return
		}
		c.Set("admin_email", email)
		c.Next()
	}
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AdminService) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}

	token, expiresAt, err := s.admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Login successful", gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (s *AdminService) Dashboard(c *gin.Context) {
	stats, err := s.admin.Dashboard(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Dashboard", stats)
}

func (s *AdminService) Activity(c *gin.Context) {
	limit, offset := pagination(c)
	entries, err := s.admin.Activity(c.Request.Context(), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Activity log", entries)
}

func (s *AdminService) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, total, err := s.admin.ListUsers(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Users", gin.H{"users": users, "total": total})
}

func (s *AdminService) ShowUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := s.admin.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "User", user)
}

type adminUpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Bio  *string `json:"bio" binding:"omitempty,max=500"`
}

func (s *AdminService) UpdateUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}

	user, err := s.users.UpdateProfile(c.Request.Context(), userID, userbiz.UpdateProfileInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	s.admin.Record(c.Request.Context(), "user.update", userID, "")
	response.Success(c, "User updated", user)
}

type banRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func (s *AdminService) BanUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req banRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.admin.BanUser(c.Request.Context(), userID, req.Reason); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "User banned", nil)
}

func (s *AdminService) UnbanUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.admin.UnbanUser(c.Request.Context(), userID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "User unbanned", nil)
}

func (s *AdminService) DeleteUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.HandleError(c, err)
		return
	}
	s.admin.Record(c.Request.Context(), "user.delete", userID, "")
	response.Success(c, "User deleted", nil)
}

func (s *AdminService) ListPosts(c *gin.Context) {
	limit, offset := pagination(c)
	posts, total, err := s.admin.ListPosts(c.Request.Context(), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Posts", gin.H{"posts": posts, "total": total})
}

func (s *AdminService) ShowPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := s.posts.Get(c.Request.Context(), postID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Post", post)
}

func (s *AdminService) FlaggedPosts(c *gin.Context) {
	limit, offset := pagination(c)
	posts, err := s.admin.FlaggedPosts(c.Request.Context(), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Flagged posts", posts)
}

type flagRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func (s *AdminService) FlagPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req flagRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.posts.Flag(c.Request.Context(), postID, req.Reason); err != nil {
		response.HandleError(c, err)
		return
	}
	s.admin.Record(c.Request.Context(), "post.flag", postID, req.Reason)
	response.Success(c, "Post flagged", nil)
}

func (s *AdminService) UnflagPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.posts.Unflag(c.Request.Context(), postID); err != nil {
		response.HandleError(c, err)
		return
	}
	s.admin.Record(c.Request.Context(), "post.unflag", postID, "")
	response.Success(c, "Post unflagged", nil)
}

func (s *AdminService) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.posts.ForceDelete(c.Request.Context(), postID); err != nil {
		response.HandleError(c, err)
		return
	}
	s.admin.Record(c.Request.Context(), "post.delete", postID, "")
	response.Success(c, "Post deleted", nil)
}

func (s *AdminService) VerificationQueue(c *gin.Context) {
	status := c.DefaultQuery("status", model.VerificationPending)
	limit, offset := pagination(c)

	items, err := s.verification.Queue(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification queue", items)
}

func (s *AdminService) ShowVerification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := s.verification.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Verification", v)
}

func (s *AdminService) Settings(c *gin.Context) {
	settings, err := s.admin.Settings(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Settings", settings)
}

type updateSettingRequest struct {
	Key   string `json:"key" binding:"required,max=100"`
	Value string `json:"value" binding:"max=2000"`
}

func (s *AdminService) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}
	if err := s.admin.UpdateSetting(c.Request.Context(), req.Key, req.Value); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Setting updated", nil)
}

type reviewRequest struct {
	Note string `json:"note" binding:"max=500"`
}

func (s *AdminService) ApproveVerification(c *gin.Context) {
	s.review(c, true)
}

func (s *AdminService) RejectVerification(c *gin.Context) {
	s.review(c, false)
}

func (s *AdminService) review(c *gin.Context, approve bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	v, err := s.verification.Review(c.Request.Context(), id, approve, req.Note, c.GetString("admin_email"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	action := "verification.reject"
	if approve {
		action = "verification.approve"
	}
	s.admin.Record(c.Request.Context(), action, id, fmt.Sprintf("user %d", v.UserID))
	response.Success(c, "Verification reviewed", v)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Resource not found")
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
