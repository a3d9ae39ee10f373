package usecase

import (
	"context"

	"github.com/GioMach/rentwatch/internal/domain"
	"go.uber.org/zap"
)

// Candidate enumeration policies for Dispatch.
const (
	NotifyModeBroadcast       = "broadcast"
	NotifyModeServiceFiltered = "service-filtered"
)

// Notifier is the outbound send primitive provided by the transport layer.
type Notifier interface {
	Notify(telegramUserID int64, text string, links []domain.Link) error
}

type FanoutResult struct {
	Attempted         int
	Sent              int
	SkippedIneligible int
	SkippedDuplicate  int
	Failed            int
}

// FanoutUsecase evaluates all candidate recipients for one event and
// dispatches to the eligible subset, at most once per (user, event).
type FanoutUsecase struct {
	users    domain.UserRepository
	subs     *SubscriptionUsecase
	ledger   domain.NotificationRepository
	notifier Notifier
	mode     string
	logger   *zap.Logger
}

func NewFanoutUsecase(users domain.UserRepository, subs *SubscriptionUsecase, ledger domain.NotificationRepository, notifier Notifier, mode string, logger *zap.Logger) *FanoutUsecase {
	return &FanoutUsecase{
		users:    users,
		subs:     subs,
		ledger:   ledger,
		notifier: notifier,
		mode:     mode,
		logger:   logger,
	}
}

// Dispatch fans the event out. The ledger claim happens before the send, so
// a crash between the two leaves at worst a claimed-but-undelivered pair;
// duplicates are never produced. A failure for one recipient never aborts
// the others, and a failed send does not release its claim.
func (f *FanoutUsecase) Dispatch(ctx context.Context, event *domain.Event) (FanoutResult, error) {
	var result FanoutResult

	candidates, err := f.users.ListActive(ctx)
	if err != nil {
		return result, err
	}

	text := renderSummary(event)
	links := eventLinks(event)

	for i := range candidates {
		user := &candidates[i]
		if f.mode != NotifyModeBroadcast && !user.MatchesAny(event.Services) {
			continue
		}
		result.Attempted++

		if !f.subs.IsEligible(ctx, user) {
			result.SkippedIneligible++
			continue
		}

		claimed, err := f.ledger.TryClaim(ctx, user.ID, event.ID)
		if err != nil {
			result.Failed++
			f.logger.Error("ledger claim failed",
				zap.Int64("telegram_user_id", user.TelegramUserID),
				zap.Uint("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			result.SkippedDuplicate++
			continue
		}

		if err := f.notifier.Notify(user.TelegramUserID, text, links); err != nil {
			// The claim stands: at-most-once beats retry-induced duplicates.
			result.Failed++
			f.logger.Warn("notification send failed",
				zap.Int64("telegram_user_id", user.TelegramUserID),
				zap.Uint("event_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		result.Sent++
	}

	return result, nil
}

func renderSummary(event *domain.Event) string {
	return event.Text
}

func eventLinks(event *domain.Event) []domain.Link {
	var links []domain.Link
	if event.AuthorLink != "" {
		links = append(links, domain.Link{Label: "Author", URL: event.AuthorLink})
	}
	if event.MessageLink != "" {
		links = append(links, domain.Link{Label: "Open message", URL: event.MessageLink})
	}
	return links
}
