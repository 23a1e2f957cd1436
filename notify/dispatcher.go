package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"safesphere/metrics"
	"safesphere/models"
)

// FriendLister resolves the users that should hear about userID's status.
type FriendLister interface {
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

type job struct {
	userID int64
	status models.SafetyStatus
	at     time.Time
}

// Dispatcher runs fan-out jobs on a fixed pool of workers. Dispatch never
// blocks: when the queue is full the job is dropped and logged.
type Dispatcher struct {
	friends  FriendLister
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration

	queue     chan job
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewDispatcher(friends FriendLister, notifier Notifier, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		friends:  friends,
		notifier: notifier,
		logger:   logger,
		timeout:  10 * time.Second,
		queue:    make(chan job, queueSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	logger.Info("Notification dispatcher started",
		"workers", workers,
		"queue_size", queueSize)

	return d
}

// Dispatch enqueues a fan-out of status for userID and reports whether the
// job was accepted.
func (d *Dispatcher) Dispatch(userID int64, status models.SafetyStatus) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping notification", "user_id", userID, "status", status)
		metrics.Notifications.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case d.queue <- job{userID: userID, status: status, at: time.Now().UTC()}:
		return true
	default:
		d.logger.Warn("Notification queue full, dropping", "user_id", userID, "status", status)
		metrics.Notifications.WithLabelValues("dropped").Inc()
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for j := range d.queue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("Notification job panic recovered",
						"worker_id", id,
						"panic", r)
				}
			}()
			d.fanOut(j)
		}()
	}
}

func (d *Dispatcher) fanOut(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	friendIDs, err := d.friends.FriendIDs(ctx, j.userID)
	if err != nil {
		d.logger.Error("Failed to resolve friends for notification", "user_id", j.userID, "error", err)
		metrics.Notifications.WithLabelValues("failed").Inc()
		return
	}

	d.logger.Info("User status changed, notifying friends",
		"user_id", j.userID,
		"status", j.status,
		"friends", len(friendIDs))

	for _, friendID := range friendIDs {
		n := Notification{
			ToUserID:   friendID,
			FromUserID: j.userID,
			Status:     j.status,
			At:         j.at,
		}
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Warn("Failed to notify friend", "user_id", j.userID, "friend_id", friendID, "error", err)
			metrics.Notifications.WithLabelValues("failed").Inc()
			continue
		}
		metrics.Notifications.WithLabelValues("delivered").Inc()
	}
}
