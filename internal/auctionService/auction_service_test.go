package auction

import (
	"testing"
	"time"

	"auction-hub/internal/auctionerrors"
	"auction-hub/internal/models"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testPaymentWindow = 2 * time.Minute

func newService(t *testing.T) (*AuctionService, *registry.Store, *notifier.MockPublisher) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	pub := notifier.NewMockPublisher(ctrl)
	store := registry.NewStore()
	return NewAuctionService(store, pub, testPaymentWindow), store, pub
}

// Tests CreateEvent
func TestAuctionService_CreateEvent(t *testing.T) {
	tests := []struct {
		name        string
		eventName   string
		location    string
		protected   bool
		password    string
		expectError error
	}{
		{name: "valid_event", eventName: "Spring Sale", location: "Hall A"},
		{name: "valid_protected_event", eventName: "VIP", protected: true, password: "hunter2"},
		{name: "blank_name", eventName: "   ", expectError: auctionerrors.ErrValidation},
		{name: "protected_without_password", eventName: "VIP", protected: true, expectError: auctionerrors.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, pub := newService(t)
			if tc.expectError == nil {
				pub.EXPECT().Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, gomock.Any())
			}

			summary, err := svc.CreateEvent(tc.eventName, tc.location, tc.protected, tc.password)
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			require.NotZero(t, summary.ID)
			require.Equal(t, tc.protected, summary.Protected)
			require.True(t, summary.Active)
		})
	}
}

func TestAuctionService_CreateEvent_MonotonicIDs(t *testing.T) {
	svc, _, pub := newService(t)
	pub.EXPECT().Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, gomock.Any()).Times(2)

	first, err := svc.CreateEvent("one", "", false, "")
	require.NoError(t, err)
	second, err := svc.CreateEvent("two", "", false, "")
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)
}

// Tests CreateItem
func TestAuctionService_CreateItem(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		openingBid  float64
		expectError error
	}{
		{name: "valid_item", title: "Painting", openingBid: 100},
		{name: "free_opening_bid", title: "Sticker", openingBid: 0},
		{name: "blank_title", title: "  ", openingBid: 10, expectError: auctionerrors.ErrValidation},
		{name: "negative_opening_bid", title: "Painting", openingBid: -5, expectError: auctionerrors.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, pub := newService(t)
			pub.EXPECT().Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, gomock.Any())
			ev, err := svc.CreateEvent("event", "", false, "")
			require.NoError(t, err)

			if tc.expectError == nil {
				pub.EXPECT().Publish(ev.ID, notifier.KindItems, gomock.Any())
			}

			item, err := svc.CreateItem(ev.ID, tc.title, "desc", tc.openingBid, "")
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			require.NotZero(t, item.ID)
			require.Equal(t, models.ItemOpen, item.Status)
			require.Equal(t, models.PaymentNone, item.Payment)
			require.Equal(t, tc.openingBid, item.CurrentBid)
		})
	}
}

func TestAuctionService_CreateItem_UnknownEvent(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.CreateItem(99, "Painting", "", 10, "")
	require.ErrorIs(t, err, auctionerrors.ErrEventNotFound)
}

// Tests SetMinIncrement and SetCurrentLot
func TestAuctionService_EventConfig(t *testing.T) {
	svc, _, pub := newService(t)
	pub.EXPECT().Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, gomock.Any())
	ev, err := svc.CreateEvent("event", "", false, "")
	require.NoError(t, err)
	pub.EXPECT().Publish(ev.ID, notifier.KindItems, gomock.Any())
	item, err := svc.CreateItem(ev.ID, "lot", "", 10, "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetMinIncrement(ev.ID, -1), auctionerrors.ErrValidation)

	pub.EXPECT().Publish(ev.ID, notifier.KindEventConfigUpdated, models.EventConfig{EventID: ev.ID, MinIncrement: 50})
	require.NoError(t, svc.SetMinIncrement(ev.ID, 50))

	require.ErrorIs(t, svc.SetCurrentLot(ev.ID, uintPtr(999)), auctionerrors.ErrItemNotFound)

	pub.EXPECT().Publish(ev.ID, notifier.KindEventConfigUpdated, gomock.Any())
	require.NoError(t, svc.SetCurrentLot(ev.ID, uintPtr(item.ID)))

	pub.EXPECT().Publish(ev.ID, notifier.KindEventConfigUpdated, gomock.Any())
	require.NoError(t, svc.SetCurrentLot(ev.ID, nil))
}

// Tests StartTimer / StopTimer
func TestAuctionService_Timers(t *testing.T) {
	svc, store, pub := newService(t)
	ev, item := seedEventWithItem(t, svc, pub)

	_, err := svc.StartTimer(ev.ID, item.ID, 0)
	require.ErrorIs(t, err, auctionerrors.ErrValidation)
	_, err = svc.StartTimer(ev.ID, item.ID, -3)
	require.ErrorIs(t, err, auctionerrors.ErrValidation)

	pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
	armed, err := svc.StartTimer(ev.ID, item.ID, 30)
	require.NoError(t, err)
	require.NotNil(t, armed.ClosesAt)
	require.True(t, armed.ClosesAt.After(time.Now().UTC()))

	// stopTimer clears the deadline unconditionally
	pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
	stopped, err := svc.StopTimer(ev.ID, item.ID)
	require.NoError(t, err)
	require.Nil(t, stopped.ClosesAt)

	// timers may only be started on open items
	require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
		e.FindItem(item.ID).Status = models.ItemClosed
		return nil
	}))
	_, err = svc.StartTimer(ev.ID, item.ID, 30)
	require.ErrorIs(t, err, auctionerrors.ErrStateConflict)

	// but stopTimer stays legal in any status
	pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
	_, err = svc.StopTimer(ev.ID, item.ID)
	require.NoError(t, err)
}

// Tests MarkSold
func TestAuctionService_MarkSold(t *testing.T) {
	t.Run("with_winner_opens_payment_window", func(t *testing.T) {
		svc, store, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)
		require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
			it := e.FindItem(item.ID)
			it.CurrentBid = 150
			it.CurrentWinner = "Alice"
			return nil
		}))

		pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
		sold, err := svc.MarkSold(ev.ID, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.ItemSold, sold.Status)
		require.Equal(t, models.PaymentPending, sold.Payment)
		require.Equal(t, "Alice", sold.PaymentWinner)
		require.NotNil(t, sold.PaymentDueAt)
		require.True(t, sold.PaymentDueAt.After(time.Now().UTC()))
	})

	t.Run("without_winner_skips_payment_window", func(t *testing.T) {
		svc, _, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)

		pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
		sold, err := svc.MarkSold(ev.ID, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.ItemSold, sold.Status)
		require.Equal(t, models.PaymentNone, sold.Payment)
		require.Nil(t, sold.PaymentDueAt)
	})

	t.Run("closed_item_cannot_be_sold_directly", func(t *testing.T) {
		svc, store, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)
		require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
			e.FindItem(item.ID).Status = models.ItemClosed
			return nil
		}))

		_, err := svc.MarkSold(ev.ID, item.ID)
		require.ErrorIs(t, err, auctionerrors.ErrStateConflict)
	})
}

// Tests Reopen
func TestAuctionService_Reopen(t *testing.T) {
	t.Run("resets_payment_fields", func(t *testing.T) {
		svc, store, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)
		require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
			it := e.FindItem(item.ID)
			it.CurrentWinner = "Alice"
			return nil
		}))

		pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any()).Times(2)
		_, err := svc.MarkSold(ev.ID, item.ID)
		require.NoError(t, err)

		reopened, err := svc.Reopen(ev.ID, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.ItemOpen, reopened.Status)
		require.Equal(t, models.PaymentNone, reopened.Payment)
		require.Nil(t, reopened.PaymentDueAt)
		require.Empty(t, reopened.PaymentWinner)
	})

	t.Run("clears_stale_deadline", func(t *testing.T) {
		svc, store, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)
		past := time.Now().UTC().Add(-time.Minute)
		require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
			it := e.FindItem(item.ID)
			it.Status = models.ItemClosed
			it.ClosesAt = &past
			return nil
		}))

		pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
		reopened, err := svc.Reopen(ev.ID, item.ID)
		require.NoError(t, err)
		require.Equal(t, models.ItemOpen, reopened.Status)
		require.Nil(t, reopened.ClosesAt)
	})

	t.Run("keeps_future_deadline", func(t *testing.T) {
		svc, store, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)
		future := time.Now().UTC().Add(time.Hour)
		require.NoError(t, store.Update(ev.ID, func(e *models.Event) error {
			it := e.FindItem(item.ID)
			it.Status = models.ItemClosed
			it.ClosesAt = &future
			return nil
		}))

		pub.EXPECT().Publish(ev.ID, notifier.KindItemUpdated, gomock.Any())
		reopened, err := svc.Reopen(ev.ID, item.ID)
		require.NoError(t, err)
		require.NotNil(t, reopened.ClosesAt)
	})

	t.Run("open_item_cannot_be_reopened", func(t *testing.T) {
		svc, _, pub := newService(t)
		ev, item := seedEventWithItem(t, svc, pub)

		_, err := svc.Reopen(ev.ID, item.ID)
		require.ErrorIs(t, err, auctionerrors.ErrStateConflict)
	})
}

func seedEventWithItem(t *testing.T, svc *AuctionService, pub *notifier.MockPublisher) (models.EventSummary, models.Item) {
	t.Helper()
	pub.EXPECT().Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, gomock.Any())
	ev, err := svc.CreateEvent("event", "", false, "")
	require.NoError(t, err)

	pub.EXPECT().Publish(ev.ID, notifier.KindItems, gomock.Any())
	item, err := svc.CreateItem(ev.ID, "lot", "desc", 100, "")
	require.NoError(t, err)
	return ev, item
}

func uintPtr(v uint64) *uint64 { return &v }
