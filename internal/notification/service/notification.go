package service

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/notification/biz"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// NotificationService exposes the activity inbox.
type NotificationService struct {
	notifications *biz.NotificationUsecase
}

func NewNotificationService(notifications *biz.NotificationUsecase) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", s.List)
		notifications.POST("/:id/read", s.MarkRead)
		notifications.POST("/read-all", s.MarkAllRead)
	}
}

func (s *NotificationService) List(c *gin.Context) {
	limit, offset := pagination(c)
	inbox, err := s.notifications.List(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Notifications", inbox)
}

func (s *NotificationService) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Resource not found")
		return
	}

	if err := s.notifications.MarkRead(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "Notification marked as read", nil)
}

func (s *NotificationService) MarkAllRead(c *gin.Context) {
	if err := s.notifications.MarkAllRead(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "All notifications marked as read", nil)
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
