package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/avdeenkov/go-task-manager/internal/cache"
	"github.com/avdeenkov/go-task-manager/internal/config"
	v1 "github.com/avdeenkov/go-task-manager/internal/delivery/http/v1"
	"github.com/avdeenkov/go-task-manager/internal/ratelimit"
	"github.com/avdeenkov/go-task-manager/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	var taskCache *cache.TaskCache
	if globalRedisClient != nil {
		taskCache = cache.NewTaskCache(globalLogger, globalRedisClient, cfg.Redis.CacheTTL)
	}

	authService := services.NewAuthService(
		globalLogger,
		globalUserStorage,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.TokenTTL,
	)
	taskService := services.NewTaskService(
		globalLogger,
		globalTaskStorage,
		taskCache,
	)
	v1Handler := v1.New(
		globalLogger,
		authService,
		taskService,
		cfg.JWT.RequireToken,
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Task Manager API is running")
	})

	authRouter := router.Group("/auth")
	if globalRedisClient != nil {
		limiter := ratelimit.NewLimiter(
			globalRedisClient,
			"ratelimit:auth:",
			cfg.Redis.AuthRateLimit,
			cfg.Redis.AuthRateWindow,
		)
		authRouter.Use(ratelimit.Middleware(globalLogger, limiter))
	}
	authRouter.POST("/signup", v1Handler.HandleSignup)
	authRouter.POST("/login", v1Handler.HandleLogin)

	taskRouter := router.Group("/tasks")
	taskRouter.Use(v1Handler.HandleAuthMiddleware)
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.GET("/:userId", v1Handler.HandleGetTasks)
	taskRouter.PUT("/:taskId", v1Handler.HandleUpdateTask)
	taskRouter.DELETE("/:taskId/:userId", v1Handler.HandleDeleteTask)
}
