package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/response"
	"github.com/codeskytz/date-api/internal/user/biz"
)

// UserService exposes profile and follow endpoints.
type UserService struct {
	users   *biz.UserUsecase
	follows *biz.FollowUsecase
}

func NewUserService(users *biz.UserUsecase, follows *biz.FollowUsecase) *UserService {
	return &UserService{users: users, follows: follows}
}

func (s *UserService) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/me", s.Me)
		users.PUT("/me", s.UpdateMe)
		users.DELETE("/me", s.DeleteMe)
		users.GET("/search", s.Search)
		users.GET("/:username", s.Show)

		users.POST("/:username/follow", s.Follow)
		users.DELETE("/:username/follow", s.Unfollow)
		users.GET("/:username/followers", s.Followers)
		users.GET("/:username/following", s.Following)
		users.GET("/:username/is-following", s.IsFollowing)
	}

	account := rg.Group("/account")
	{
		account.GET("/privacy", s.Privacy)
		account.POST("/privacy", s.UpdatePrivacy)
	}
}

func (s *UserService) Me(c *gin.Context) {
	profile, err := s.users.GetProfile(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Profile", profile)
}

type updateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Bio  *string `json:"bio" binding:"omitempty,max=500"`
}

func (s *UserService) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}

	user, err := s.users.UpdateProfile(c.Request.Context(), c.GetInt64("user_id"), biz.UpdateProfileInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Profile updated successfully", user)
}

func (s *UserService) DeleteMe(c *gin.Context) {
	if err := s.users.DeleteAccount(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Account deleted successfully", nil)
}

func (s *UserService) Show(c *gin.Context) {
	profile, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Profile", profile)
}

func (s *UserService) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"q": {"The q query parameter is required."},
		})
		return
	}
	limit, offset := pagination(c)

	users, err := s.users.Search(c.Request.Context(), query, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Search results", users)
}

func (s *UserService) Follow(c *gin.Context) {
	target, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := s.follows.Follow(c.Request.Context(), c.GetInt64("user_id"), target.ID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Followed successfully", nil)
}

func (s *UserService) Unfollow(c *gin.Context) {
	target, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if err := s.follows.Unfollow(c.Request.Context(), c.GetInt64("user_id"), target.ID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Unfollowed successfully", nil)
}

func (s *UserService) Privacy(c *gin.Context) {
	privacy, err := s.users.Privacy(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Privacy settings", gin.H{"privacy": privacy})
}

type updatePrivacyRequest struct {
	Privacy string `json:"privacy" binding:"required"`
}

func (s *UserService) UpdatePrivacy(c *gin.Context) {
	var req updatePrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"privacy": {"The privacy field is required."},
		})
		return
	}

	if err := s.users.SetPrivacy(c.Request.Context(), c.GetInt64("user_id"), req.Privacy); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Privacy settings updated", gin.H{"privacy": req.Privacy})
}

// Private accounts reveal their connections to themselves and their
// followers only.
func (s *UserService) canViewConnections(c *gin.Context, target *biz.Profile) bool {
	if target.Privacy != model.PrivacyPrivate {
		return true
	}
	viewerID := c.GetInt64("user_id")
	if viewerID == target.ID {
		return true
	}
	following, err := s.follows.IsFollowing(c.Request.Context(), viewerID, target.ID)
	if err != nil {
		response.HandleError(c, err)
		return false
	}
	if !following {
		response.HandleError(c, apperrors.New(apperrors.ErrForbidden))
		return false
	}
	return true
}

func (s *UserService) Followers(c *gin.Context) {
	target, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !s.canViewConnections(c, target) {
		return
	}
	limit, offset := pagination(c)
	users, err := s.follows.Followers(c.Request.Context(), target.ID, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Followers", users)
}

func (s *UserService) Following(c *gin.Context) {
	target, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !s.canViewConnections(c, target) {
		return
	}
	limit, offset := pagination(c)
	users, err := s.follows.Following(c.Request.Context(), target.ID, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Following", users)
}

func (s *UserService) IsFollowing(c *gin.Context) {
	target, err := s.users.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	following, err := s.follows.IsFollowing(c.Request.Context(), c.GetInt64("user_id"), target.ID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Follow status", gin.H{"is_following": following})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
