package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/pkg/response"
	"github.com/codeskytz/date-api/internal/post/biz"
)

// PostService exposes the post endpoints.
type PostService struct {
	posts *biz.PostUsecase
}

func NewPostService(posts *biz.PostUsecase) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	{
		posts.POST("", s.Create)
		posts.GET("/feed", s.Feed)
		posts.GET("/search", s.Search)
		posts.GET("/mine", s.Mine)
		posts.GET("/saved", s.Saved)
		posts.GET("/user/:id", s.ByUser)
		posts.GET("/:id", s.Show)
		posts.DELETE("/:id", s.Delete)

		posts.POST("/:id/like", s.Like)
		posts.DELETE("/:id/like", s.Unlike)
		posts.GET("/:id/comments", s.Comments)
		posts.POST("/:id/comments", s.Comment)
		posts.POST("/:id/save", s.ToggleSave)
	}
}

type createPostRequest struct {
	Content      string `json:"content" binding:"max=5000"`
	MediaURL     string `json:"media_url" binding:"omitempty,url"`
	MediaType    string `json:"media_type" binding:"omitempty,oneof=image video"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,url"`
	IsReel       bool   `json:"is_reel"`
}

func (s *PostService) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"request": {err.Error()},
		})
		return
	}

	post, err := s.posts.Create(c.Request.Context(), c.GetInt64("user_id"), biz.CreatePostInput{
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		MediaType:    req.MediaType,
		ThumbnailURL: req.ThumbnailURL,
		IsReel:       req.IsReel,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Post created successfully", post)
}

func (s *PostService) Feed(c *gin.Context) {
	limit, offset := pagination(c)
	posts, err := s.posts.Feed(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Feed", posts)
}

func (s *PostService) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"q": {"The q query parameter is required."},
		})
		return
	}
	limit, offset := pagination(c)
	posts, err := s.posts.Search(c.Request.Context(), query, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Search results", posts)
}

func (s *PostService) Mine(c *gin.Context) {
	limit, offset := pagination(c)
	posts, err := s.posts.ByUser(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "My posts", posts)
}

func (s *PostService) Saved(c *gin.Context) {
	limit, offset := pagination(c)
	posts, err := s.posts.Saved(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Saved posts", posts)
}

func (s *PostService) ByUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	posts, err := s.posts.ByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "User posts", posts)
}

func (s *PostService) Show(c *gin.Context) {
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

func (s *PostService) Delete(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.posts.Delete(c.Request.Context(), c.GetInt64("user_id"), postID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Post deleted successfully", nil)
}

func (s *PostService) Like(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := s.posts.Like(c.Request.Context(), c.GetInt64("user_id"), postID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Post liked", nil)
}

func (s *PostService) Unlike(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.posts.Unlike(c.Request.Context(), c.GetInt64("user_id"), postID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Post unliked", nil)
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

func (s *PostService) Comment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "The given data was invalid.", map[string][]string{
			"content": {"The content field is required."},
		})
		return
	}

	comment, err := s.posts.Comment(c.Request.Context(), c.GetInt64("user_id"), postID, req.Content)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Comment added", comment)
}

func (s *PostService) Comments(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)
	comments, err := s.posts.Comments(c.Request.Context(), postID, limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Comments", comments)
}

func (s *PostService) ToggleSave(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	saved, err := s.posts.ToggleSave(c.Request.Context(), c.GetInt64("user_id"), postID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Save toggled", gin.H{"saved": saved})
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
