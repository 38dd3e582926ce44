package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	adminservice "github.com/codeskytz/date-api/internal/admin/service"
	authservice "github.com/codeskytz/date-api/internal/auth/service"
	"github.com/codeskytz/date-api/internal/conf"
	"github.com/codeskytz/date-api/internal/data"
	mediaservice "github.com/codeskytz/date-api/internal/media/service"
	notificationservice "github.com/codeskytz/date-api/internal/notification/service"
	otpservice "github.com/codeskytz/date-api/internal/otp/service"
	"github.com/codeskytz/date-api/internal/pkg/logger"
	"github.com/codeskytz/date-api/internal/pkg/middleware"
	"github.com/codeskytz/date-api/internal/pkg/response"
	postservice "github.com/codeskytz/date-api/internal/post/service"
	storyservice "github.com/codeskytz/date-api/internal/story/service"
	userservice "github.com/codeskytz/date-api/internal/user/service"
	verificationservice "github.com/codeskytz/date-api/internal/verification/service"
)

// Services collects every HTTP-facing service the router mounts.
type Services struct {
	Auth          *authservice.AuthService
	Otp           *otpservice.OtpService
	Media         *mediaservice.MediaService
	User          *userservice.UserService
	Post          *postservice.PostService
	Story         *storyservice.StoryService
	Notification  *notificationservice.NotificationService
	Verification  *verificationservice.VerificationService
	Admin         *adminservice.AdminService
	Authenticator middleware.Authenticator
}

// HTTPServer wraps the gin engine with lifecycle management.
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer builds the router and mounts every route group.
func NewHTTPServer(cfg *conf.Config, d *data.Data, svcs *Services, l *logger.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.RequestID())
	engine.Use(logger.Middleware(l))
	engine.MaxMultipartMemory = 16 << 20

	engine.GET("/health", func(c *gin.Context) {
		if err := d.DB.HealthCheck(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.Success(c, "ok", nil)
	})

	api := engine.Group("/api/v1")

	// Public surface. OTP issuance rate limits aggressively; auth a bit
	// looser.
	public := api.Group("")
	public.Use(middleware.RateLimit(d.Redis, "public", 30, time.Minute))
	svcs.Auth.RegisterPublicRoutes(public)
	svcs.Otp.RegisterRoutes(public)
	svcs.Admin.RegisterRoutes(public)

	// Everything else needs a bearer token.
	protected := api.Group("")
	protected.Use(middleware.Auth(svcs.Authenticator))
	svcs.Auth.RegisterProtectedRoutes(protected)
	svcs.Media.RegisterRoutes(protected)
	svcs.User.RegisterRoutes(protected)
	svcs.Post.RegisterRoutes(protected)
	svcs.Story.RegisterRoutes(protected)
	svcs.Notification.RegisterRoutes(protected)
	svcs.Verification.RegisterRoutes(protected)

	return &HTTPServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: l,
	}
}

// Start blocks serving requests until the listener fails or Stop is
// called.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
