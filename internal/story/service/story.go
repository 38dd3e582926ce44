package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/pkg/response"
	"github.com/codeskytz/date-api/internal/story/biz"
)

// StoryService exposes the story endpoints.
type StoryService struct {
	stories *biz.StoryUsecase
}

func NewStoryService(stories *biz.StoryUsecase) *StoryService {
	return &StoryService{stories: stories}
}

func (s *StoryService) RegisterRoutes(rg *gin.RouterGroup) {
	stories := rg.Group("/stories")
	{
		stories.POST("", s.Create)
		stories.GET("/feed", s.Feed)
		stories.GET("/user/:id", s.ByUser)
		stories.GET("/:id", s.Show)
		stories.POST("/:id/view", s.View)
		stories.DELETE("/:id", s.Delete)
	}
}

type createStoryRequest struct {
	MediaURL     string `json:"media_url" binding:"required,url"`
	MediaType    string `json:"media_type" binding:"required,oneof=image video"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,url"`
	Caption      string `json:"caption" binding:"max=500"`
	Duration     int64  `json:"duration" binding:"omitempty,min=0"`
}

func (s *StoryService) Create(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}

	story, err := s.stories.Create(c.Request.Context(), c.GetInt64("user_id"), biz.CreateStoryInput{
		MediaURL:     req.MediaURL,
		MediaType:    req.MediaType,
		ThumbnailURL: req.ThumbnailURL,
		Caption:      req.Caption,
		Duration:     req.Duration,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Story created successfully", story)
}

func (s *StoryService) Feed(c *gin.Context) {
	limit, offset := pagination(c)
	stories, err := s.stories.Feed(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Story feed", stories)
}

func (s *StoryService) ByUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	stories, err := s.stories.ByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "User stories", stories)
}

func (s *StoryService) Show(c *gin.Context) {
	storyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	story, err := s.stories.Get(c.Request.Context(), storyID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Story", story)
}

func (s *StoryService) View(c *gin.Context) {
	storyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.stories.View(c.Request.Context(), c.GetInt64("user_id"), storyID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Story viewed", nil)
}

func (s *StoryService) Delete(c *gin.Context) {
	storyID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.stories.Delete(c.Request.Context(), c.GetInt64("user_id"), storyID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Story deleted successfully", nil)
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
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
