package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/internal/queue"
	mid "github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/internal/storage"
	"github.com/OFFIS-RIT/plotline/backend/internal/timing"
	"github.com/OFFIS-RIT/plotline/backend/internal/util"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store/memory"
	storepgx "github.com/OFFIS-RIT/plotline/backend/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewServer builds the echo instance with all middleware and routes.
func NewServer(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(util.GetEnvString("BODY_LIMIT", "128M")))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graphClient, err := util.NewGraphClient()
	if err != nil {
		logger.Fatal("[Server] Failed to create graph client", "err", err)
	}

	app := &mid.App{
		Graph:      graphClient,
		APIKey:     util.GetEnv("API_KEY"),
		ReadAPIKey: util.GetEnv("READ_API_KEY"),
	}

	var analyses store.NovelStorage
	switch adapter := util.GetEnvString("STORE_ADAPTER", "memory"); adapter {
	case "memory":
		analyses = memory.NewAnalysisStorage()
	case "postgres":
		conn, err := util.ConnectDatabase(ctx)
		if err != nil {
			logger.Fatal("[Server] Failed to connect to database", "err", err)
		}
		defer conn.Close()
		analyses = storepgx.NewAnalysisDBStorage(conn)
		app.Timings = timing.New(conn)
	default:
		logger.Fatal("[Server] Unknown store adapter", "adapter", adapter)
	}
	app.Store = analyses

	if util.GetEnv("RABBITMQ_HOST") != "" {
		que, err := queue.Dial(ctx)
		if err != nil {
			logger.Fatal("[Server] Failed to connect to queue", "err", err)
		}
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("[Server] Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, []string{queue.AnalyzeQueue}); err != nil {
			logger.Fatal("[Server] Failed to setup queues", "err", err)
		}
		app.Queue = ch
	}

	if bucket := util.GetEnv("AWS_BUCKET"); bucket != "" {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("[Server] Failed to create S3 client", "err", err)
		}
		app.Objects = storage.NewS3Storage(client, bucket)
	}

	if app.APIKey == "" && app.ReadAPIKey == "" {
		logger.Warn("[Server] No API keys configured, the API is open")
	}

	e := NewServer(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("[Server] Starting server", "port", port, "uploads", app.Queue != nil && app.Objects != nil)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Server] Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("[Server] Failed to shutdown server", "err", err)
	}
}
