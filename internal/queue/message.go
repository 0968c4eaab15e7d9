package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"

	"github.com/go-playground/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AnalyzeMessage asks the worker to analyse a novel stored under
// ObjectKey.
type AnalyzeMessage struct {
	Message       string `json:"message,omitempty"`
	NovelID       string `json:"novel_id" validate:"required"`
	ObjectKey     string `json:"object_key" validate:"required"`
	Title         string `json:"title,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

var validate = validator.New()

// NewAnalyzeMessage fills in a fresh correlation id.
func NewAnalyzeMessage(novelID, objectKey, title string) (AnalyzeMessage, error) {
	id, err := gonanoid.New()
	if err != nil {
		return AnalyzeMessage{}, fmt.Errorf("failed to generate correlation id: %w", err)
	}
	return AnalyzeMessage{
		Message:       "Analyze novel",
		NovelID:       novelID,
		ObjectKey:     objectKey,
		Title:         title,
		CorrelationID: id,
	}, nil
}

// ParseAnalyzeMessage decodes and validates a message body. Malformed
// messages wrap common.ErrInvalidInput, retrying them is pointless.
func ParseAnalyzeMessage(body []byte) (AnalyzeMessage, error) {
	var msg AnalyzeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return AnalyzeMessage{}, fmt.Errorf("%w: failed to decode analyze message: %v", common.ErrInvalidInput, err)
	}
	if err := validate.Struct(msg); err != nil {
		return AnalyzeMessage{}, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return msg, nil
}

// PublishAnalyze enqueues msg on AnalyzeQueue.
func PublishAnalyze(ctx context.Context, ch Publisher, msg AnalyzeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal analyze message: %w", err)
	}
	if err := PublishFIFO(ctx, ch, AnalyzeQueue, data); err != nil {
		return fmt.Errorf("failed to publish analyze message: %w", err)
	}
	return nil
}
