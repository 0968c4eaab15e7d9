package routes

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/OFFIS-RIT/plotline/backend/internal/queue"
	"github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/internal/timing"
	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxUploadBytes = 64 << 20

// AnalyzeNovelHandler analyses a novel synchronously. The body carries
// either raw text, parsed like an uploaded file, or ready made chapters.
func AnalyzeNovelHandler(c echo.Context) error {
	type analyzeBody struct {
		ID       string           `json:"id"`
		Title    string           `json:"title"`
		Author   string           `json:"author"`
		Text     string           `json:"text" validate:"required_without=Chapters"`
		Chapters []common.Chapter `json:"chapters" validate:"required_without=Text"`
	}

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(data); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Either text or chapters is required")
	}

	id := data.ID
	if id == "" {
		generated, err := gonanoid.New()
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, "Internal server error")
		}
		id = generated
	}

	novel := common.Novel{ID: id, Chapters: data.Chapters}
	if data.Text != "" {
		parsed, err := loader.ParseNovel(id, id+".txt", []byte(data.Text))
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		novel = parsed
	}
	if data.Title != "" {
		novel.Title = data.Title
	}
	if data.Author != "" {
		novel.Author = data.Author
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	analysis, err := app.Graph.ProcessNovel(ctx, novel)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		logger.Error("[Server] Failed to analyze novel", "novel_id", id, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	if err := app.Store.SaveAnalysis(ctx, analysis); err != nil {
		logger.Error("[Server] Failed to save analysis", "novel_id", id, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusCreated, analysis.Summary())
}

// UploadNovelHandler stores an uploaded text file and queues it for the
// worker.
func UploadNovelHandler(c echo.Context) error {
	type uploadBody struct {
		Title string `form:"title"`
	}
	type uploadResponse struct {
		Message       string `json:"message"`
		NovelID       string `json:"novel_id,omitempty"`
		ObjectKey     string `json:"object_key,omitempty"`
		CorrelationID string `json:"correlation_id,omitempty"`
		Estimate      string `json:"estimated_duration,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil || app.Objects == nil {
		return c.JSON(http.StatusServiceUnavailable, uploadResponse{Message: "Uploads are not configured"})
	}

	data := new(uploadBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid request body"})
	}
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Missing file"})
	}
	if header.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, uploadResponse{Message: "File too large"})
	}
	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid file"})
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Message: "Invalid file"})
	}

	novelID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	ctx := c.Request().Context()
	key, err := app.Objects.PutNovel(ctx, novelID, header.Filename, content)
	if err != nil {
		logger.Error("[Server] Failed to store upload", "novel_id", novelID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	msg, err := queue.NewAnalyzeMessage(novelID, key, data.Title)
	if err == nil {
		err = queue.PublishAnalyze(ctx, app.Queue, msg)
	}
	if err != nil {
		logger.Error("[Server] Failed to enqueue novel", "novel_id", novelID, "err", err)
		if delErr := app.Objects.DeleteFile(ctx, key); delErr != nil {
			logger.Warn("[Server] Failed to clean up upload", "key", key, "err", delErr)
		}
		return c.JSON(http.StatusInternalServerError, uploadResponse{Message: "Internal server error"})
	}

	resp := uploadResponse{
		Message:       "Novel queued for analysis",
		NovelID:       novelID,
		ObjectKey:     key,
		CorrelationID: msg.CorrelationID,
	}
	if app.Timings != nil {
		estimate, err := app.Timings.PredictProcessingTime(ctx, timing.StatAnalyze, utf8.RuneCount(content))
		if err != nil {
			logger.Warn("[Server] Failed to estimate processing time", "novel_id", novelID, "err", err)
		} else if estimate > 0 {
			resp.Estimate = timing.Format(estimate)
		}
	}

	logger.Info("[Server] Novel queued", "novel_id", novelID, "key", key, "correlation_id", msg.CorrelationID)
	return c.JSON(http.StatusAccepted, resp)
}
