package colony

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventType classifies a simulation event.
type EventType string

const (
	// EventFirstFood fires once per run, on the first successful pickup.
	EventFirstFood EventType = "first_food"
	// EventDelivery fires each time an ant drops food at the nest.
	EventDelivery EventType = "delivery"
	// EventFoodDepleted fires when a food source runs out of units.
	EventFoodDepleted EventType = "food_depleted"
	// EventAllFoodCollected fires once, when no food remains on the map.
	EventAllFoodCollected EventType = "all_food_collected"
)

// Event is a simulation occurrence pushed to registered notifiers.
type Event struct {
	RunID     RunID     `json:"run_id"`
	Type      EventType `json:"type"`
	Tick      int       `json:"tick"`
	Timestamp int64     `json:"timestamp"`

	// Position of the event where one applies: the exhausted food tile
	// for food_depleted, the tour destination for delivery.
	Pos *Position `json:"pos,omitempty"`

	// PathLength is the forward tour length for delivery events.
	PathLength int `json:"path_length,omitempty"`
}

// JSON encodes the event for transport.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is a delivery channel for simulation events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the kind of notifier (e.g. "websocket", "webhook").
	Type() string

	// Notify delivers one event. The context bounds delivery time.
	Notify(ctx context.Context, event Event) error

	// Close releases the notifier's resources.
	Close() error
}

type notificationJob struct {
	Event       Event
	NotifierIDs []string
}

// NotificationManager routes simulation events to registered notifiers
// asynchronously, so a slow webhook never stalls a tick.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewNotificationManager creates a manager with a single dispatch worker
// and a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a manager logging through logger.
func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		logger:    logger,
	}
	mgr.startWorkers(1)
	return mgr
}

// RegisterNotifier registers a notifier with the manager.
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}

	nm.mu.Lock()
	delete(nm.notifiers, id)
	nm.mu.Unlock()
	return nil
}

// GetNotifier retrieves a notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the IDs of all registered notifiers.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast enqueues an event for every registered notifier.
func (nm *NotificationManager) Broadcast(event Event) {
	nm.Enqueue(event, nm.ListNotifiers())
}

// Enqueue queues an event for the given notifiers. Non-blocking: when the
// queue is full the event is dropped and logged.
func (nm *NotificationManager) Enqueue(event Event, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()
	if closed {
		return
	}

	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	default:
		nm.logger.Warnf("notification queue full, dropping event: type=%s tick=%d", event.Type, event.Tick)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for range n {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

// notifyWithRetry attempts delivery with exponential backoff.
func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event Event) {
	nm.mu.RLock()
	notifier, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()

	if !ok {
		nm.logger.Errorf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}

		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			nm.logger.Errorf("notification failed after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close drains the queue, stops the workers and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	defer nm.mu.Unlock()
	var firstErr error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing notifier %s: %w", id, err)
		}
		delete(nm.notifiers, id)
	}
	return firstErr
}
