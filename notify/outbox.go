package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/models"
	"gorm.io/gorm"
)

// Outbox makes confirmation delivery survive dispatcher outages. A row is
// written in the same transaction as the order, delivered right after
// commit, and retried by Run until it succeeds or runs out of attempts.
type Outbox struct {
	db          *gorm.DB
	dispatcher  Dispatcher
	maxAttempts int
	backoff     time.Duration
	grace       time.Duration
	now         func() time.Time
}

// maxBackoff caps the retry delay however many attempts are allowed.
const maxBackoff = time.Hour

type OutboxOption func(*Outbox)

// WithBackoff sets the delay before the first retry; it doubles per attempt.
func WithBackoff(d time.Duration) OutboxOption { return func(o *Outbox) { o.backoff = d } }

// WithGrace sets how long the relay leaves a fresh row to the post-commit delivery.
func WithGrace(d time.Duration) OutboxOption { return func(o *Outbox) { o.grace = d } }

func WithClock(now func() time.Time) OutboxOption { return func(o *Outbox) { o.now = now } }

func NewOutbox(db *gorm.DB, dispatcher Dispatcher, maxAttempts int, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		db:          db,
		dispatcher:  dispatcher,
		maxAttempts: maxAttempts,
		backoff:     30 * time.Second,
		grace:       time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}
	return o
}

// Record stores conf as PENDING using tx, so it only exists if tx commits.
func (o *Outbox) Record(tx *gorm.DB, conf OrderConfirmation) (*models.NotificationOutbox, error) {
	payload, err := json.Marshal(conf)
	if err != nil {
		return nil, fmt.Errorf("encode confirmation: %w", err)
	}
	row := &models.NotificationOutbox{
		OrderID:       conf.OrderID,
		Payload:       string(payload),
		Status:        models.OutboxStatusPending,
		NextAttemptAt: o.now().Add(o.grace),
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("record confirmation for order %s: %w", conf.OrderID, err)
	}
	return row, nil
}

// Deliver makes one delivery attempt and records its result on the row.
// The returned error is the dispatcher's; bookkeeping failures are logged.
func (o *Outbox) Deliver(ctx context.Context, row *models.NotificationOutbox) error {
	var conf OrderConfirmation
	if err := json.Unmarshal([]byte(row.Payload), &conf); err != nil {
		o.markDead(row, fmt.Sprintf("undecodable payload: %v", err))
		return err
	}

	dispatchErr := o.dispatcher.Dispatch(ctx, conf)
	if dispatchErr == nil {
		row.Status = models.OutboxStatusDelivered
		row.LastError = ""
		if err := o.db.Model(row).Updates(map[string]interface{}{
			"status":     row.Status,
			"last_error": "",
		}).Error; err != nil {
			log.Printf("❌ Confirmation for order %s delivered but not marked: %v", row.OrderID, err)
		}
		return nil
	}

	row.Attempts++
	row.LastError = dispatchErr.Error()
	if row.Attempts >= o.maxAttempts {
		log.Printf("☠️ Confirmation for order %s dead-lettered after %d attempts: %v", row.OrderID, row.Attempts, dispatchErr)
		o.markDead(row, row.LastError)
		return dispatchErr
	}

	row.NextAttemptAt = o.now().Add(o.retryDelay(row.Attempts))
	log.Printf("⚠️ Confirmation for order %s failed (attempt %d/%d), retry at %s: %v",
		row.OrderID, row.Attempts, o.maxAttempts, row.NextAttemptAt.Format(time.RFC3339), dispatchErr)
	if err := o.db.Model(row).Updates(map[string]interface{}{
		"attempts":        row.Attempts,
		"last_error":      row.LastError,
		"next_attempt_at": row.NextAttemptAt,
	}).Error; err != nil {
		log.Printf("❌ Failed to reschedule confirmation for order %s: %v", row.OrderID, err)
	}
	return dispatchErr
}

// retryDelay doubles the base backoff per failed attempt, up to maxBackoff.
func (o *Outbox) retryDelay(attempts int) time.Duration {
	d := o.backoff
	for i := 1; i < attempts; i++ {
		if d >= maxBackoff/2 {
			return maxBackoff
		}
		d *= 2
	}
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func (o *Outbox) markDead(row *models.NotificationOutbox, reason string) {
	row.Status = models.OutboxStatusDeadLettered
	row.LastError = reason
	if err := o.db.Model(row).Updates(map[string]interface{}{
		"status":     row.Status,
		"attempts":   row.Attempts,
		"last_error": reason,
	}).Error; err != nil {
		log.Printf("❌ Failed to dead-letter confirmation for order %s: %v", row.OrderID, err)
	}
}

// RelayOnce retries every PENDING row that is due and returns how many were delivered.
func (o *Outbox) RelayOnce(ctx context.Context) (int, error) {
	var due []models.NotificationOutbox
	if err := o.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxStatusPending, o.now()).
		Order("next_attempt_at").
		Limit(100).
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("load due confirmations: %w", err)
	}

	delivered := 0
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		if err := o.Deliver(ctx, &due[i]); err == nil {
			delivered++
		}
	}
	return delivered, nil
}

// Run relays due rows every interval until ctx is done.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🔁 Outbox relay running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := o.RelayOnce(ctx)
			if err != nil {
				log.Printf("❌ Outbox relay: %v", err)
			} else if n > 0 {
				log.Printf("✅ Outbox relay delivered %d confirmation(s)", n)
			}
		}
	}
}

func (o *Outbox) Pending(ctx context.Context) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("status = ?", models.OutboxStatusPending).Count(&n).Error
	return n, err
}

// DeadLettered counts confirmations that exhausted their delivery attempts.
func (o *Outbox) DeadLettered(ctx context.Context) (int64, error) {
	var n int64
	err := o.db.WithContext(ctx).Model(&models.NotificationOutbox{}).
		Where("status = ?", models.OutboxStatusDeadLettered).Count(&n).Error
	return n, err
}
