package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GioMach/rentwatch/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrUserNotRegistered = errors.New("user not registered")
	ErrUnknownService    = errors.New("unknown service")
)

// SubscriptionUsecase owns per-user subscription state: trial windows,
// service toggles, lazy expiry, and permanent activation after payment.
// All read-modify-write paths for one user are serialized through a keyed
// mutex; no lock is held across outbound sends.
type SubscriptionUsecase struct {
	users   domain.UserRepository
	catalog domain.Catalog
	trial   time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSubscriptionUsecase(users domain.UserRepository, catalog domain.Catalog, trialDays int, logger *zap.Logger) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		users:   users,
		catalog: catalog,
		trial:   time.Duration(trialDays) * 24 * time.Hour,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[int64]*sync.Mutex),
	}
}

func (u *SubscriptionUsecase) Catalog() domain.Catalog { return u.catalog }

// StartOrGetUser registers the user on first contact with a fresh trial and
// an empty service set. Existing records are returned unmodified; profile
// fields are not resynced on this path. The second return reports whether
// the record was created by this call.
func (u *SubscriptionUsecase) StartOrGetUser(ctx context.Context, telegramUserID int64, username, firstName, lastName string) (*domain.User, bool, error) {
	lock := u.userLock(telegramUserID)
	lock.Lock()
	defer lock.Unlock()

	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err == nil {
		return user, false, nil
	}
	if err != domain.ErrNotFound {
		return nil, false, err
	}

	expiry := u.now().Add(u.trial)
	newUser := &domain.User{
		TelegramUserID: telegramUserID,
		Username:       username,
		FirstName:      firstName,
		LastName:       lastName,
		ExpiresAt:      &expiry,
		Active:         true,
	}
	if err := u.users.Create(ctx, newUser); err != nil {
		return nil, false, err
	}
	u.logger.Info("user registered with trial",
		zap.Int64("telegram_user_id", telegramUserID),
		zap.Time("expires_at", expiry),
	)
	return newUser, true, nil
}

// IsEligible reports whether the user may receive notifications now.
// Permanent users are always eligible. The first call observing an expired
// window flips the persisted active flag; the flag is sticky and only an
// explicit resubscribe action (first service toggle or payment) clears it.
func (u *SubscriptionUsecase) IsEligible(ctx context.Context, user *domain.User) bool {
	if user.Permanent {
		return true
	}
	if !user.Active {
		return false
	}
	if user.ExpiresAt != nil && u.now().Before(*user.ExpiresAt) {
		return true
	}

	user.Active = false
	if err := u.users.SetActive(ctx, user.ID, false); err != nil {
		u.logger.Warn("failed to persist expiry transition",
			zap.Int64("telegram_user_id", user.TelegramUserID),
			zap.Error(err),
		)
	} else {
		u.logger.Info("user subscription expired",
			zap.Int64("telegram_user_id", user.TelegramUserID),
		)
	}
	return false
}

// SetServiceEnabled toggles one service tag for the user.
//
// Enabling the first-ever service grants a fresh trial (now + trial window)
// and reactivates the user; enabling an additional service while at least
// one is already on only extends access to the end of the current day.
// Disabling never touches expiry.
func (u *SubscriptionUsecase) SetServiceEnabled(ctx context.Context, telegramUserID int64, tag domain.ServiceTag, enabled bool) (*domain.User, error) {
	if !u.catalog.Has(tag) {
		return nil, ErrUnknownService
	}

	lock := u.userLock(telegramUserID)
	lock.Lock()
	defer lock.Unlock()

	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	if enabled == user.HasService(tag) {
		return user, nil
	}

	if !enabled {
		services := make([]domain.ServiceTag, 0, len(user.Services))
		for _, t := range user.Services {
			if t != tag {
				services = append(services, t)
			}
		}
		user.Services = services
		if err := u.users.Update(ctx, user); err != nil {
			return nil, err
		}
		u.logger.Info("service disabled",
			zap.Int64("telegram_user_id", telegramUserID),
			zap.String("service", string(tag)),
		)
		return user, nil
	}

	hadServices := len(user.Services) > 0
	user.Services = append(user.Services, tag)

	now := u.now()
	if !hadServices {
		expiry := now.Add(u.trial)
		user.ExpiresAt = &expiry
		user.Active = true
	} else {
		endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
		user.ExpiresAt = &endOfDay
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	u.logger.Info("service enabled",
		zap.Int64("telegram_user_id", telegramUserID),
		zap.String("service", string(tag)),
		zap.Timep("expires_at", user.ExpiresAt),
	)
	return user, nil
}

// ActivatePermanent marks the user permanently active. Called when the
// payment provider reports a completed payment; bypasses trial policy.
func (u *SubscriptionUsecase) ActivatePermanent(ctx context.Context, telegramUserID int64) error {
	lock := u.userLock(telegramUserID)
	lock.Lock()
	defer lock.Unlock()

	user, err := u.users.GetByTelegramID(ctx, telegramUserID)
	if err != nil {
		if err == domain.ErrNotFound {
			return ErrUserNotRegistered
		}
		return err
	}

	user.Permanent = true
	user.Active = true
	user.ExpiresAt = nil
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}
	u.logger.Info("user activated permanently", zap.Int64("telegram_user_id", telegramUserID))
	return nil
}

func (u *SubscriptionUsecase) userLock(telegramUserID int64) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	lock, ok := u.locks[telegramUserID]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[telegramUserID] = lock
	}
	return lock
}
