package sweeper

import (
	"time"

	"auction-hub/internal/models"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"
	"auction-hub/utils"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically closes expired bidding windows and expires unpaid
// payment windows across all events. It runs on the same serialized
// per-event mutation path as interactive commands, so a sweep tick and a
// concurrent stopTimer or reopen cannot race into an inconsistent state.
type Sweeper struct {
	store     *registry.Store
	notifier  notifier.Publisher
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewSweeper creates a sweeper ticking at the given interval.
func NewSweeper(store *registry.Store, pub notifier.Publisher, interval time.Duration) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		store:     store,
		notifier:  pub,
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start schedules the sweep. Singleton mode guarantees ticks never
// overlap; a tick that runs long pushes the next one back.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.Sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep visits every event once. Expired changes are collected per event
// and each changed event gets a single batched item-list broadcast, which
// bounds staleness to the tick interval without redundant messages. A
// sweep has no caller to report to, so it never returns an error.
func (s *Sweeper) Sweep() {
	now := time.Now().UTC()
	s.store.ForEachEvent(func(ev *models.Event) {
		changed := 0
		for _, item := range ev.Items {
			if item.Status == models.ItemOpen && item.ClosesAt != nil && now.After(*item.ClosesAt) {
				item.Status = models.ItemClosed
				item.ClosesAt = nil
				changed++
			}
			if item.Status == models.ItemSold && item.Payment == models.PaymentPending &&
				item.PaymentDueAt != nil && now.After(*item.PaymentDueAt) {
				item.Payment = models.PaymentExpired
				changed++
			}
		}
		if changed > 0 {
			s.notifier.Publish(ev.ID, notifier.KindItems, ev.CloneItems())
			utils.Info("sweep: expired items updated", map[string]any{
				"event_id": ev.ID,
				"changed":  changed,
			})
		}
	})
}
