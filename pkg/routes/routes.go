package routes

import (
	"FitTrack/internal/auth"
	"FitTrack/internal/bootstrap"
	"FitTrack/internal/config"
	"FitTrack/internal/notification"
	"FitTrack/pkg/middleware"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(config.Load),
	fx.Provide(bootstrap.NewLogger),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewRedisClient),
	fx.Provide(notification.NewSender),
	fx.Provide(notification.NewCodeMailer),
	fx.Provide(auth.NewRevocationStore),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewCodeRepository),
	fx.Provide(auth.NewBcryptHasher),
	fx.Provide(auth.NewSessionIssuer),
	fx.Provide(
		func(r *auth.UserRepository) auth.CredentialStore { return r },
		func(r *auth.CodeRepository) auth.CodeStore { return r },
		func(r *auth.CodeRepository) auth.ExpiredCodePurger { return r },
		func(m *notification.CodeMailer) auth.CodeNotifier { return m },
		func(h *auth.BcryptHasher) auth.PasswordHasher { return h },
		func(s *auth.SessionIssuer) auth.SessionMinter { return s },
	),
	fx.Provide(auth.NewService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(auth.NewCodeSweeper),
	fx.Provide(middleware.NewVerificationPolicy),
	fx.Provide(NewEchoServer),
	fx.Invoke(EnsureIndexes),
	fx.Invoke(func(lc fx.Lifecycle, sweeper *auth.CodeSweeper) { sweeper.Start(lc) }),
	fx.Invoke(RegisterRoutes))

func NewEchoServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *echo.Echo {
	logger = logger.Named("server")
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// EnsureIndexes creates the unique email indexes the stores rely on.
func EnsureIndexes(users *auth.UserRepository, codes *auth.CodeRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return codes.EnsureIndexes(ctx)
}

func RegisterRoutes(e *echo.Echo, cfg *config.Config, authHandler *auth.AuthHandler, sessions *auth.SessionIssuer, policy *middleware.VerificationPolicy, logger *zap.Logger) {
	guard := middleware.SessionGuard(sessions, logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	limiter := middleware.AuthRateLimiter(cfg)
	authGroup := e.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup, limiter)
	authGroup.POST("/login", authHandler.Login, limiter)
	authGroup.POST("/verify-otp", authHandler.VerifyOTP, limiter)
	authGroup.POST("/resend-otp", authHandler.ResendOTP, limiter)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword, limiter)
	authGroup.POST("/reset-password", authHandler.ResetPassword, limiter)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/check", authHandler.Check, guard, policy.Middleware)

	protected := e.Group("/api")
	protected.Use(guard, policy.Middleware)
	protected.GET("/me", authHandler.Me)
}
