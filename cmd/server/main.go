package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	adminbiz "github.com/codeskytz/date-api/internal/admin/biz"
	admindata "github.com/codeskytz/date-api/internal/admin/data"
	adminservice "github.com/codeskytz/date-api/internal/admin/service"
	authbiz "github.com/codeskytz/date-api/internal/auth/biz"
	authdata "github.com/codeskytz/date-api/internal/auth/data"
	authservice "github.com/codeskytz/date-api/internal/auth/service"
	"github.com/codeskytz/date-api/internal/conf"
	"github.com/codeskytz/date-api/internal/data"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	mediadata "github.com/codeskytz/date-api/internal/media/data"
	mediaservice "github.com/codeskytz/date-api/internal/media/service"
	notificationbiz "github.com/codeskytz/date-api/internal/notification/biz"
	notificationdata "github.com/codeskytz/date-api/internal/notification/data"
	notificationservice "github.com/codeskytz/date-api/internal/notification/service"
	otpbiz "github.com/codeskytz/date-api/internal/otp/biz"
	otpdata "github.com/codeskytz/date-api/internal/otp/data"
	otpservice "github.com/codeskytz/date-api/internal/otp/service"
	"github.com/codeskytz/date-api/internal/pkg/logger"
	"github.com/codeskytz/date-api/internal/pkg/workerpool"
	postbiz "github.com/codeskytz/date-api/internal/post/biz"
	postdata "github.com/codeskytz/date-api/internal/post/data"
	postservice "github.com/codeskytz/date-api/internal/post/service"
	"github.com/codeskytz/date-api/internal/server"
	storybiz "github.com/codeskytz/date-api/internal/story/biz"
	storydata "github.com/codeskytz/date-api/internal/story/data"
	storyservice "github.com/codeskytz/date-api/internal/story/service"
	userbiz "github.com/codeskytz/date-api/internal/user/biz"
	userdata "github.com/codeskytz/date-api/internal/user/data"
	userservice "github.com/codeskytz/date-api/internal/user/service"
	verificationbiz "github.com/codeskytz/date-api/internal/verification/biz"
	verificationdata "github.com/codeskytz/date-api/internal/verification/data"
	verificationservice "github.com/codeskytz/date-api/internal/verification/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := logger.InitGlobal(&cfg.Log); err != nil {
		return err
	}
	l := logger.L()
	defer l.Sync()

	d, cleanup, err := data.NewData(cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	pool, err := workerpool.New(8, l.Logger)
	if err != nil {
		return err
	}
	defer pool.Release()

	// Storage layer.
	mediabiz.SetSizeLimits(cfg.Media.MaxAvatarSize, cfg.Media.MaxCoverSize,
		cfg.Media.MaxImageSize, cfg.Media.MaxVideoSize)
	store := mediadata.NewObjectStore(d.MinIO, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	thumbs := mediabiz.NewPlaceholderThumbnailer(store, cfg.Storage.PresignTTL)
	mediaUC := mediabiz.NewMediaUsecase(store, thumbs, l)

	// Repositories.
	authUsers := authdata.NewUserRepo(d.DB)
	tokens := authdata.NewTokenRepo(d.DB)
	otpRepo := otpdata.NewOtpRepo(d.DB)
	users := userdata.NewUserRepo(d.DB)
	follows := userdata.NewFollowRepo(d.DB)
	counters := userdata.NewCounters(d.DB, follows)
	posts := postdata.NewPostRepo(d.DB)
	notifications := notificationdata.NewNotificationRepo(d.DB)
	stories := storydata.NewStoryRepo(d.DB)
	verifications := verificationdata.NewVerificationRepo(d.DB)
	adminRepo := admindata.NewAdminRepo(d.DB)

	// Usecases.
	otpUC := otpbiz.NewOtpUsecase(otpRepo, otpdata.NewMailer(cfg.Email), otpdata.NewCooldown(d.Redis), l)
	authUC := authbiz.NewAuthUsecase(authUsers, tokens, otpUC, cfg.Auth.BcryptCost, l)
	userUC := userbiz.NewUserUsecase(users, counters, mediaUC, pool, l)
	notificationUC := notificationbiz.NewNotificationUsecase(notifications, l)
	followUC := userbiz.NewFollowUsecase(follows, users, notificationUC, l)
	postUC := postbiz.NewPostUsecase(posts, mediaUC, notificationUC, cfg.Storage.PublicBaseURL, l)
	storyUC := storybiz.NewStoryUsecase(stories, mediaUC, cfg.Storage.PublicBaseURL, l)
	verificationUC := verificationbiz.NewVerificationUsecase(verifications, mediaUC, userUC, l)
	adminUC := adminbiz.NewAdminUsecase(adminRepo, authUC,
		cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminJWTSecret, cfg.Auth.AdminTokenTTL, l)

	svcs := &server.Services{
		Auth:          authservice.NewAuthService(authUC),
		Otp:           otpservice.NewOtpService(otpUC),
		Media:         mediaservice.NewMediaService(mediaUC, userUC, cfg.Storage.PublicBaseURL),
		User:          userservice.NewUserService(userUC, followUC),
		Post:          postservice.NewPostService(postUC),
		Story:         storyservice.NewStoryService(storyUC),
		Notification:  notificationservice.NewNotificationService(notificationUC),
		Verification:  verificationservice.NewVerificationService(verificationUC),
		Admin:         adminservice.NewAdminService(adminUC, userUC, postUC, verificationUC),
		Authenticator: authUC,
	}

	srv := server.NewHTTPServer(cfg, d, svcs, l)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		l.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return err
	}

	// Let in-flight cascade sweeps finish before resources close.
	pool.Wait()
	l.Info("server stopped")
	return nil
}
