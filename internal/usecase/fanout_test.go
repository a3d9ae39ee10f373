package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GioMach/rentwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func rentalEvent() *domain.Event {
	return &domain.Event{
		ID:          1,
		ChatID:      -100200300,
		MessageID:   42,
		ChatName:    "myhome",
		Text:        "Apartment for rent near the park",
		MessageLink: "https://t.me/myhome/42",
		AuthorLink:  "https://t.me/landlord",
		Services:    []domain.ServiceTag{domain.ServiceRentersRealEstate},
	}
}

func addSubscriber(t *testing.T, subs *SubscriptionUsecase, telegramUserID int64, tags ...domain.ServiceTag) {
	t.Helper()
	ctx := context.Background()
	_, _, err := subs.StartOrGetUser(ctx, telegramUserID, "user", "User", "")
	require.NoError(t, err)
	for _, tag := range tags {
		_, err := subs.SetServiceEnabled(ctx, telegramUserID, tag, true)
		require.NoError(t, err)
	}
}

func TestDispatchAtMostOncePerUserPerEvent(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	subs := newSubscriptionForTest(repo, t0)
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	fanout := NewFanoutUsecase(repo, subs, ledger, notifier, NotifyModeServiceFiltered, zap.NewNop())

	addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)
	event := rentalEvent()

	first, err := fanout.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 1, notifier.sentCount())
	assert.Len(t, ledger.claims, 1)

	// Re-processing the identical event must not produce a second send.
	second, err := fanout.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 1, second.SkippedDuplicate)
	assert.Equal(t, 1, notifier.sentCount())
	assert.Len(t, ledger.claims, 1)
}

func TestDispatchSkipsIneligible(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	subs := newSubscriptionForTest(repo, t0)
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	fanout := NewFanoutUsecase(repo, subs, ledger, notifier, NotifyModeServiceFiltered, zap.NewNop())

	addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)

	// Past the trial window: the candidate is still listed as active but
	// the eligibility check flips and skips it.
	subs.now = fixedClock(t0.Add(10 * 24 * time.Hour))
	result, err := fanout.Dispatch(ctx, rentalEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.SkippedIneligible)
	assert.Zero(t, result.Sent)
	assert.Empty(t, ledger.claims)
	assert.Zero(t, notifier.sentCount())

	stored, err := repo.GetByTelegramID(ctx, 100)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestDispatchServiceFiltering(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	newFixture := func(mode string) (*fakeUserRepo, *SubscriptionUsecase, *fakeNotifier, *FanoutUsecase) {
		repo := newFakeUserRepo()
		subs := newSubscriptionForTest(repo, t0)
		notifier := &fakeNotifier{}
		fanout := NewFanoutUsecase(repo, subs, newFakeLedger(), notifier, mode, zap.NewNop())
		return repo, subs, notifier, fanout
	}

	t.Run("service-filtered skips non-matching subscribers", func(t *testing.T) {
		_, subs, notifier, fanout := newFixture(NotifyModeServiceFiltered)
		addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)
		addSubscriber(t, subs, 200, domain.ServiceCleaning)
		addSubscriber(t, subs, 300) // no services enabled

		result, err := fanout.Dispatch(ctx, rentalEvent())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Attempted)
		assert.Equal(t, 1, result.Sent)
		require.Equal(t, 1, notifier.sentCount())
		assert.Equal(t, int64(100), notifier.sent[0].telegramUserID)
	})

	t.Run("broadcast notifies every active user", func(t *testing.T) {
		_, subs, notifier, fanout := newFixture(NotifyModeBroadcast)
		addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)
		addSubscriber(t, subs, 200, domain.ServiceCleaning)
		addSubscriber(t, subs, 300)

		result, err := fanout.Dispatch(ctx, rentalEvent())
		require.NoError(t, err)
		assert.Equal(t, 3, result.Attempted)
		assert.Equal(t, 3, result.Sent)
		assert.Equal(t, 3, notifier.sentCount())
	})
}

func TestDispatchSendFailureKeepsClaimAndSiblings(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	subs := newSubscriptionForTest(repo, t0)
	ledger := newFakeLedger()
	notifier := &fakeNotifier{failFor: map[int64]error{100: errors.New("bot was blocked by the user")}}
	fanout := NewFanoutUsecase(repo, subs, ledger, notifier, NotifyModeServiceFiltered, zap.NewNop())

	addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)
	addSubscriber(t, subs, 200, domain.ServiceRentersRealEstate)
	event := rentalEvent()

	result, err := fanout.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Sent)
	assert.Len(t, ledger.claims, 2)

	// The failed recipient's claim stands: no retry on re-dispatch.
	retry, err := fanout.Dispatch(ctx, event)
	require.NoError(t, err)
	assert.Zero(t, retry.Sent)
	assert.Zero(t, retry.Failed)
	assert.Equal(t, 2, retry.SkippedDuplicate)
}

func TestDispatchLedgerErrorIsolatedPerRecipient(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	subs := newSubscriptionForTest(repo, t0)
	ledger := newFakeLedger()
	ledger.err = errors.New("store unavailable")
	notifier := &fakeNotifier{}
	fanout := NewFanoutUsecase(repo, subs, ledger, notifier, NotifyModeServiceFiltered, zap.NewNop())

	addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)

	result, err := fanout.Dispatch(ctx, rentalEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, notifier.sentCount())
}

func TestDispatchNotificationCarriesLinks(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	subs := newSubscriptionForTest(repo, t0)
	notifier := &fakeNotifier{}
	fanout := NewFanoutUsecase(repo, subs, newFakeLedger(), notifier, NotifyModeServiceFiltered, zap.NewNop())

	addSubscriber(t, subs, 100, domain.ServiceRentersRealEstate)

	_, err := fanout.Dispatch(ctx, rentalEvent())
	require.NoError(t, err)
	require.Equal(t, 1, notifier.sentCount())

	sent := notifier.sent[0]
	assert.Equal(t, "Apartment for rent near the park", sent.text)
	require.Len(t, sent.links, 2)
	assert.Equal(t, "https://t.me/landlord", sent.links[0].URL)
	assert.Equal(t, "https://t.me/myhome/42", sent.links[1].URL)
}
