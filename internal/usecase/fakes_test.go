package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/GioMach/rentwatch/internal/domain"
)

// In-memory collaborators for the usecase tests. They copy records on the
// way in and out so tests observe store state, not shared pointers.

type fakeUserRepo struct {
	mu             sync.Mutex
	users          map[int64]*domain.User
	nextID         uint
	setActiveCalls int
	updateErr      error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramUserID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[telegramUserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	copied.Services = append([]domain.ServiceTag(nil), user.Services...)
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	copied := *user
	copied.Services = append([]domain.ServiceTag(nil), user.Services...)
	r.users[user.TelegramUserID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.users[user.TelegramUserID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Services = append([]domain.ServiceTag(nil), user.Services...)
	stored.ExpiresAt = user.ExpiresAt
	stored.Active = user.Active
	stored.Permanent = user.Permanent
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, userID uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setActiveCalls++
	for _, user := range r.users {
		if user.ID == userID {
			user.Active = active
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if !user.Active {
			continue
		}
		copied := *user
		copied.Services = append([]domain.ServiceTag(nil), user.Services...)
		out = append(out, copied)
	}
	return out, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.Event
	nextID uint
	err    error
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.events {
		if existing.ChatID == event.ChatID && existing.MessageID == event.MessageID {
			event.ID = existing.ID
			return nil
		}
	}
	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, *event)
	return nil
}

type claimKey struct {
	userID  uint
	eventID uint
}

type fakeLedger struct {
	mu     sync.Mutex
	claims map[claimKey]bool
	err    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{claims: map[claimKey]bool{}}
}

func (l *fakeLedger) TryClaim(_ context.Context, userID, eventID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	key := claimKey{userID: userID, eventID: eventID}
	if l.claims[key] {
		return false, nil
	}
	l.claims[key] = true
	return true, nil
}

type sentNotification struct {
	telegramUserID int64
	text           string
	links          []domain.Link
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentNotification
	failFor map[int64]error
}

func (n *fakeNotifier) Notify(telegramUserID int64, text string, links []domain.Link) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failFor[telegramUserID]; ok {
		return err
	}
	n.sent = append(n.sent, sentNotification{telegramUserID: telegramUserID, text: text, links: links})
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
