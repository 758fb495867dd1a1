package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"remindme/internal/models"
	"remindme/internal/store"
)

const defaultTickInterval = 60 * time.Second

// TickStats summarizes one scheduler pass
type TickStats struct {
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ReminderWorker polls for due reminders on a fixed interval and
// delivers them through the owners' live WhatsApp sessions. Items are
// processed sequentially within a tick so the idempotency guard never
// races on last_notified_at.
type ReminderWorker struct {
	store       store.Store
	registry    *SessionRegistry
	webhooks    *WebhookService // optional, per-owner side-notifications
	interval    time.Duration
	sendTimeout time.Duration
	done        chan struct{}
}

func NewReminderWorker(st store.Store, registry *SessionRegistry, webhooks *WebhookService) *ReminderWorker {
	return &ReminderWorker{
		store:       st,
		registry:    registry,
		webhooks:    webhooks,
		interval:    tickIntervalFromEnv(),
		sendTimeout: 30 * time.Second,
		done:        make(chan struct{}),
	}
}

// tickIntervalFromEnv reads SCHEDULER_INTERVAL_SECONDS, defaulting to 60
func tickIntervalFromEnv() time.Duration {
	raw := os.Getenv("SCHEDULER_INTERVAL_SECONDS")
	if raw == "" {
		return defaultTickInterval
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 1 {
		log.Printf("Invalid SCHEDULER_INTERVAL_SECONDS %q, using default", raw)
		return defaultTickInterval
	}
	return time.Duration(seconds) * time.Second
}

// Start launches the polling loop
func (w *ReminderWorker) Start() {
	go w.run()
}

// Stop terminates the polling loop
func (w *ReminderWorker) Stop() {
	close(w.done)
}

func (w *ReminderWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunTickOnce()
		case <-w.done:
			return
		}
	}
}

// IsDue reports whether a reminder's next occurrence time has passed
func IsDue(r models.Reminder, now time.Time) bool {
	return !r.Completed && !r.NextTriggerAt.After(now)
}

// IsEligible reports whether a due reminder has not already been
// notified for its current occurrence. The last_notified_at comparison
// is the sole defense against double-firing the same occurrence across
// ticks.
func IsEligible(r models.Reminder, now time.Time) bool {
	if !IsDue(r, now) {
		return false
	}
	return r.LastNotifiedAt == nil || r.LastNotifiedAt.Before(r.NextTriggerAt)
}

// RunTickOnce executes a single scheduler pass: one batched due query,
// the in-memory eligibility filter, then sequential per-item delivery.
// One item's failure never aborts the rest of the batch. Also invoked
// directly by the ops endpoint.
func (w *ReminderWorker) RunTickOnce() TickStats {
	return w.runTick(time.Now())
}

func (w *ReminderWorker) runTick(now time.Time) TickStats {
	var stats TickStats

	due, err := w.store.DueReminders(now)
	if err != nil {
		log.Printf("Scheduler tick: due query failed: %v", err)
		return stats
	}

	for _, item := range due {
		if !IsEligible(item, now) {
			continue
		}
		stats.Due++

		outcome := w.deliver(item, now)
		switch outcome {
		case models.DeliverySuccess:
			stats.Sent++
		case models.DeliveryFailed:
			stats.Failed++
		case models.DeliverySkipped:
			stats.Skipped++
		}
	}

	if stats.Due > 0 {
		log.Printf("Scheduler tick: %d eligible, %d sent, %d failed, %d skipped",
			stats.Due, stats.Sent, stats.Failed, stats.Skipped)
	}
	return stats
}

// deliver attempts one reminder and records the outcome. Transient
// unavailability (no destination, session not ready, no live handle) is
// a skip, not a failure, and leaves the item untouched for later ticks.
func (w *ReminderWorker) deliver(item models.Reminder, now time.Time) models.DeliveryOutcome {
	account, err := w.store.AccountByUsername(item.OwnerID)
	if err != nil {
		return w.skip(item, now, fmt.Sprintf("owner account unavailable: %v", err))
	}

	destination := account.NotifyNumber()
	if destination == "" {
		return w.skip(item, now, "no destination number configured")
	}

	session, err := w.store.SessionByOwner(item.OwnerID)
	if err != nil || session.Status != models.SessionReady {
		return w.skip(item, now, "session not ready")
	}

	handle, ok := w.registry.Get(item.OwnerID)
	if !ok {
		return w.skip(item, now, "no live transport handle")
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.sendTimeout)
	err = handle.Send(ctx, destination, item.Message())
	cancel()

	if err != nil {
		// No backoff and no cap: the item stays eligible and is retried
		// every tick until it succeeds or the owner edits/completes it.
		log.Printf("Delivery failed for reminder %s (owner %s): %v", item.ID, item.OwnerID, err)
		w.record(item, now, models.DeliveryFailed, err.Error())
		return models.DeliveryFailed
	}

	w.record(item, now, models.DeliverySuccess, "")

	next := item.NextTriggerAt
	completed := item.Completed
	if item.Repeat.IsRecurring() {
		next = NextOccurrence(item.Repeat, item.AnchorTime, item.Weekdays, item.NextTriggerAt, now)
	} else {
		// A once reminder is terminal after its first delivery.
		completed = true
	}

	if err := w.store.UpdateReminderSchedule(item.ID, now, next, completed); err != nil {
		log.Printf("Failed to advance reminder %s: %v", item.ID, err)
	}

	w.sideNotify(account, item, now)
	return models.DeliverySuccess
}

func (w *ReminderWorker) skip(item models.Reminder, now time.Time, reason string) models.DeliveryOutcome {
	log.Printf("Skipping reminder %s (owner %s): %s", item.ID, item.OwnerID, reason)
	w.record(item, now, models.DeliverySkipped, reason)
	return models.DeliverySkipped
}

func (w *ReminderWorker) record(item models.Reminder, at time.Time, outcome models.DeliveryOutcome, detail string) {
	rec := &models.DeliveryRecord{
		OwnerID:     item.OwnerID,
		ReminderID:  item.ID,
		AttemptedAt: at,
		Outcome:     outcome,
		Detail:      detail,
	}
	if err := w.store.AppendDelivery(rec); err != nil {
		log.Printf("Failed to append delivery record for %s: %v", item.ID, err)
	}
}

// sideNotify fires the owner's webhook, if configured. Webhook problems
// are logged and never affect the already-recorded delivery outcome.
func (w *ReminderWorker) sideNotify(account *models.Account, item models.Reminder, at time.Time) {
	if w.webhooks == nil || account.WebhookURL == "" {
		return
	}
	if err := w.webhooks.NotifyDelivered(account.WebhookURL, item, at); err != nil {
		log.Printf("Webhook notification failed for %s: %v", account.Username, err)
	}
}
