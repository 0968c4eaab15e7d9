package middleware

import (
	"context"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/internal/queue"
	"github.com/OFFIS-RIT/plotline/backend/internal/storage"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// Predictor estimates how long an analysis of amount runes takes.
// *timing.Stats implements it.
type Predictor interface {
	PredictProcessingTime(ctx context.Context, statType string, amount int) (time.Duration, error)
}

type AppUser struct {
	Role        string
	Permissions []string
}

// App is shared by every request. Queue and Objects are nil when the
// server runs without a broker or object store, uploads are then refused.
// Timings is only set with the postgres store.
type App struct {
	Store      store.NovelStorage
	Graph      *graph.GraphClient
	Queue      queue.Publisher
	Objects    storage.ObjectStore
	Timings    Predictor
	APIKey     string
	ReadAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
