package usecase

import (
	"context"
	"fmt"

	"github.com/GioMach/rentwatch/internal/domain"
	"go.uber.org/zap"
)

// IngestUsecase turns raw inbound group messages into persisted events and
// triggers notification fanout for the ones that classify.
type IngestUsecase struct {
	classifier *Classifier
	events     domain.EventRepository
	fanout     *FanoutUsecase
	logger     *zap.Logger
}

func NewIngestUsecase(classifier *Classifier, events domain.EventRepository, fanout *FanoutUsecase, logger *zap.Logger) *IngestUsecase {
	return &IngestUsecase{classifier: classifier, events: events, fanout: fanout, logger: logger}
}

// Ingest classifies the message, persists it as an event, and dispatches
// notifications. Messages without text or without a keyword match are
// dropped silently. A persistence failure aborts fanout for the event so a
// half-saved event never notifies anyone.
func (u *IngestUsecase) Ingest(ctx context.Context, msg domain.InboundMessage) error {
	text := msg.Body()
	if text == "" {
		return nil
	}

	tags := u.classifier.Classify(text)
	if len(tags) == 0 {
		return nil
	}

	event := &domain.Event{
		ChatID:      msg.ChatID,
		MessageID:   msg.MessageID,
		ChatName:    chatName(msg),
		Text:        text,
		MessageLink: messageLink(msg),
		AuthorLink:  authorLink(msg),
		Services:    tags,
	}

	if err := u.events.Create(ctx, event); err != nil {
		u.logger.Error("failed to persist event",
			zap.Int64("chat_id", msg.ChatID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err),
		)
		return err
	}

	result, err := u.fanout.Dispatch(ctx, event)
	if err != nil {
		u.logger.Error("fanout failed",
			zap.Uint("event_id", event.ID),
			zap.Error(err),
		)
		return err
	}

	u.logger.Info("event processed",
		zap.Uint("event_id", event.ID),
		zap.String("chat_name", event.ChatName),
		zap.Int("attempted", result.Attempted),
		zap.Int("sent", result.Sent),
		zap.Int("skipped_ineligible", result.SkippedIneligible),
		zap.Int("skipped_duplicate", result.SkippedDuplicate),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func chatName(msg domain.InboundMessage) string {
	if msg.ChatTitle != "" {
		return msg.ChatTitle
	}
	if msg.ChatUsername != "" {
		return msg.ChatUsername
	}
	return "Private Chat"
}

// messageLink builds the event permalink. Chats without a public username
// fall back to the display name, which is not guaranteed to resolve.
func messageLink(msg domain.InboundMessage) string {
	if msg.ChatUsername != "" {
		return fmt.Sprintf("https://t.me/%s/%d", msg.ChatUsername, msg.MessageID)
	}
	return fmt.Sprintf("https://t.me/%s/%d", chatName(msg), msg.MessageID)
}

func authorLink(msg domain.InboundMessage) string {
	if msg.AuthorUsername != "" {
		return fmt.Sprintf("https://t.me/%s", msg.AuthorUsername)
	}
	if msg.AuthorID != 0 {
		return fmt.Sprintf("tg://user?id=%d", msg.AuthorID)
	}
	return ""
}
