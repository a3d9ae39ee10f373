package telegram

import (
	"context"
	"errors"

	"github.com/GioMach/rentwatch/internal/domain"
	"github.com/GioMach/rentwatch/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	subs     *usecase.SubscriptionUsecase
	ingest   *usecase.IngestUsecase
	payments *Payments
	logger   *zap.Logger
}

func NewHandlers(subs *usecase.SubscriptionUsecase, ingest *usecase.IngestUsecase, payments *Payments, logger *zap.Logger) *Handlers {
	return &Handlers{subs: subs, ingest: ingest, payments: payments, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, api, update.CallbackQuery)
		return
	}
	if update.PreCheckoutQuery != nil {
		h.handlePreCheckout(api, update.PreCheckoutQuery)
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil {
		return
	}

	if msg.SuccessfulPayment != nil {
		h.handleSuccessfulPayment(ctx, api, msg)
		return
	}

	if msg.Chat.IsPrivate() {
		if msg.IsCommand() && msg.From != nil {
			h.handleCommand(ctx, api, msg)
		}
		return
	}

	// Anything from a group, supergroup, or channel flows into ingestion.
	// Ingestion failures stay invisible to the source chat.
	h.handleGroupMessage(ctx, msg)
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, msg *tgbotapi.Message) {
	command := msg.Command()
	chatID := msg.Chat.ID
	userID := msg.From.ID

	h.logger.Info("telegram command received",
		zap.Int64("telegram_user_id", userID),
		zap.String("command", command),
	)

	switch command {
	case "start":
		_, created, err := h.subs.StartOrGetUser(ctx, userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
		if err != nil {
			h.logger.Warn("start command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Failed to register. Please try again.")
			return
		}
		if !created {
			h.reply(api, chatID, "You have already started. I'm watching groups for you.\n\n"+HelpText)
			return
		}
		h.reply(api, chatID, "Hello! I collect rental and service offers from groups.\nYour 3-day trial has started.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "services":
		user, _, err := h.subs.StartOrGetUser(ctx, userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
		if err != nil {
			h.logger.Warn("services command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Something went wrong. Please try again.")
			return
		}
		reply := tgbotapi.NewMessage(chatID, "Pick the services you want to follow:")
		reply.ReplyMarkup = serviceKeyboard(h.subs.Catalog(), user)
		if _, err := api.Send(reply); err != nil {
			h.logger.Warn("failed to send services keyboard", zap.Error(err))
		}
	case "status":
		user, _, err := h.subs.StartOrGetUser(ctx, userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
		if err != nil {
			h.logger.Warn("status command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Something went wrong. Please try again.")
			return
		}
		h.reply(api, chatID, formatStatus(user))
	case "subscribe":
		if !h.payments.Enabled() {
			h.reply(api, chatID, "Payments are not enabled on this bot yet.")
			return
		}
		if _, err := api.Send(h.payments.Invoice(chatID)); err != nil {
			h.logger.Warn("failed to send invoice", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Failed to create an invoice. Please try again.")
		}
	default:
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) handleCallback(ctx context.Context, api *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) {
	tag, ok := ParseServiceCallback(callback.Data)
	if !ok || callback.From == nil {
		return
	}
	userID := callback.From.ID

	user, _, err := h.subs.StartOrGetUser(ctx, userID, callback.From.UserName, callback.From.FirstName, callback.From.LastName)
	if err != nil {
		h.logger.Warn("callback user lookup failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
		h.answerCallback(api, callback.ID, "Something went wrong.")
		return
	}

	enable := !user.HasService(tag)
	updated, err := h.subs.SetServiceEnabled(ctx, userID, tag, enable)
	if err != nil {
		h.logger.Warn("service toggle failed",
			zap.Int64("telegram_user_id", userID),
			zap.String("service", string(tag)),
			zap.Error(err),
		)
		h.answerCallback(api, callback.ID, h.toggleErrorMessage(err))
		return
	}

	note := string(tag) + " disabled."
	if enable {
		note = string(tag) + " enabled."
	}
	h.answerCallback(api, callback.ID, note)

	if callback.Message != nil {
		markup := serviceKeyboard(h.subs.Catalog(), updated)
		edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, markup)
		if _, err := api.Request(edit); err != nil {
			h.logger.Warn("failed to refresh services keyboard", zap.Error(err))
		}
	}
}

func (h *Handlers) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	inbound := domain.InboundMessage{
		Text:         msg.Text,
		Caption:      msg.Caption,
		MessageID:    msg.MessageID,
		ChatID:       msg.Chat.ID,
		ChatTitle:    msg.Chat.Title,
		ChatUsername: msg.Chat.UserName,
	}
	if msg.From != nil {
		inbound.AuthorID = msg.From.ID
		inbound.AuthorUsername = msg.From.UserName
		inbound.AuthorFirstName = msg.From.FirstName
	}

	if err := h.ingest.Ingest(ctx, inbound); err != nil {
		h.logger.Error("ingest failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err),
		)
	}
}

func (h *Handlers) handlePreCheckout(api *tgbotapi.BotAPI, query *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: query.ID, OK: true}
	if _, err := api.Request(answer); err != nil {
		h.logger.Warn("failed to answer pre-checkout query", zap.Error(err))
	}
}

func (h *Handlers) handleSuccessfulPayment(ctx context.Context, api *tgbotapi.BotAPI, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	if err := h.subs.ActivatePermanent(ctx, userID); err != nil {
		h.logger.Error("failed to activate paid user", zap.Int64("telegram_user_id", userID), zap.Error(err))
		h.reply(api, msg.Chat.ID, "Payment received, but activation failed. Please contact support.")
		return
	}
	h.logger.Info("payment completed", zap.Int64("telegram_user_id", userID))
	h.reply(api, msg.Chat.ID, "Payment received. Your subscription is now permanent, thank you!")
}

func (h *Handlers) toggleErrorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrUnknownService):
		return "Unknown service."
	case errors.Is(err, usecase.ErrUserNotRegistered):
		return "Please /start first."
	}
	return "Something went wrong. Please try again."
}

func (h *Handlers) answerCallback(api *tgbotapi.BotAPI, callbackID, text string) {
	if _, err := api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.Warn("failed to answer callback", zap.Error(err))
	}
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
