package colony

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeNotifier records delivered events and can be told to fail the first
// N delivery attempts.
type fakeNotifier struct {
	mu       sync.Mutex
	id       string
	events   []Event
	failLeft int
	closed   bool
}

func (f *fakeNotifier) ID() string   { return f.id }
func (f *fakeNotifier) Type() string { return "fake" }

func (f *fakeNotifier) Notify(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLeft > 0 {
		f.failLeft--
		return fmt.Errorf("transient failure")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeNotifier) delivered() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

func (f *fakeNotifier) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// waitForEvents polls until the notifier has seen n events or the deadline
// passes. Delivery is asynchronous, so tests cannot assert immediately.
func waitForEvents(t *testing.T, f *fakeNotifier, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := f.delivered(); len(events) >= n {
			return events
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d events, got %d", n, len(f.delivered()))
	return nil
}

func TestNotificationManager_Register(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.RegisterNotifier(nil); err == nil {
		t.Error("Expected an error registering a nil notifier")
	}
	if err := nm.RegisterNotifier(&fakeNotifier{id: ""}); err == nil {
		t.Error("Expected an error registering an empty ID")
	}

	if err := nm.RegisterNotifier(&fakeNotifier{id: "n1"}); err != nil {
		t.Fatalf("RegisterNotifier returned error: %v", err)
	}
	if err := nm.RegisterNotifier(&fakeNotifier{id: "n1"}); err == nil {
		t.Error("Expected an error registering a duplicate ID")
	}

	if _, exists := nm.GetNotifier("n1"); !exists {
		t.Error("Expected the notifier to be retrievable")
	}
	if ids := nm.ListNotifiers(); len(ids) != 1 || ids[0] != "n1" {
		t.Errorf("Expected exactly [n1] listed, got %v", ids)
	}
}

func TestNotificationManager_Unregister(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	fake := &fakeNotifier{id: "n1"}
	nm.RegisterNotifier(fake)

	if err := nm.UnregisterNotifier("n1"); err != nil {
		t.Fatalf("UnregisterNotifier returned error: %v", err)
	}
	if !fake.isClosed() {
		t.Error("Expected unregistering to close the notifier")
	}
	if err := nm.UnregisterNotifier("n1"); err == nil {
		t.Error("Expected an error unregistering a missing notifier")
	}
}

func TestNotificationManager_Broadcast(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	a := &fakeNotifier{id: "a"}
	b := &fakeNotifier{id: "b"}
	nm.RegisterNotifier(a)
	nm.RegisterNotifier(b)

	pos := Position{X: 3, Y: 4}
	nm.Broadcast(Event{RunID: "run-1", Type: EventDelivery, Tick: 12, Pos: &pos, PathLength: 7})

	for _, fake := range []*fakeNotifier{a, b} {
		events := waitForEvents(t, fake, 1)
		e := events[0]
		if e.Type != EventDelivery || e.Tick != 12 || e.RunID != "run-1" {
			t.Errorf("Notifier %s got wrong event: %+v", fake.id, e)
		}
		if e.Pos == nil || *e.Pos != pos || e.PathLength != 7 {
			t.Errorf("Notifier %s lost event payload: %+v", fake.id, e)
		}
	}
}

func TestNotificationManager_RetriesTransientFailures(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	// Fails twice, succeeds on the third attempt within the retry budget.
	fake := &fakeNotifier{id: "flaky", failLeft: 2}
	nm.RegisterNotifier(fake)

	nm.Broadcast(Event{Type: EventFirstFood, Tick: 1})

	events := waitForEvents(t, fake, 1)
	if events[0].Type != EventFirstFood {
		t.Errorf("Expected the retried event to arrive intact, got %+v", events[0])
	}
}

func TestNotificationManager_EnqueueAfterClose(t *testing.T) {
	nm := NewNotificationManager()
	fake := &fakeNotifier{id: "n1"}
	nm.RegisterNotifier(fake)

	if err := nm.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !fake.isClosed() {
		t.Error("Expected Close to close registered notifiers")
	}

	// Must be a silent no-op, not a panic on the closed channel.
	nm.Enqueue(Event{Type: EventDelivery}, []string{"n1"})
	nm.Broadcast(Event{Type: EventDelivery})

	if err := nm.Close(); err != nil {
		t.Errorf("Expected a second Close to be a no-op, got %v", err)
	}
}

func TestNotificationManager_SimulationEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth = 2
	cfg.GridHeight = 1
	cfg.Nest = Position{X: 1, Y: 0}
	cfg.NumAnts = 1
	cfg.FoodPositions = []Position{{X: 0, Y: 0}}
	cfg.NumFoodSources = 0
	cfg.FoodCapacity = 1
	cfg.NumWalls = 0
	cfg.Epsilon = 0
	cfg.Seed = 1

	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation returned error: %v", err)
	}
	nm := NewNotificationManager()
	defer nm.Close()
	fake := &fakeNotifier{id: "sink"}
	nm.RegisterNotifier(fake)
	sim.SetRunID("evt-run")
	sim.SetNotificationManager(nm)

	// Tick 1: pickup of the only unit fires first_food, food_depleted and
	// all_food_collected. Tick 2: the delivery.
	sim.Tick()
	sim.Tick()

	events := waitForEvents(t, fake, 4)
	byType := map[EventType]Event{}
	for _, e := range events {
		byType[e.Type] = e
	}
	for _, want := range []EventType{EventFirstFood, EventFoodDepleted, EventAllFoodCollected, EventDelivery} {
		if _, ok := byType[want]; !ok {
			t.Errorf("Expected a %s event, got %v", want, events)
		}
	}
	if e := byType[EventDelivery]; e.RunID != "evt-run" || e.Tick != 2 || e.PathLength != 2 {
		t.Errorf("Delivery event has wrong identity: %+v", e)
	}
	if e := byType[EventFoodDepleted]; e.Pos == nil || *e.Pos != (Position{X: 0, Y: 0}) {
		t.Errorf("Depletion event lost its position: %+v", e)
	}
}

func TestEvent_JSON(t *testing.T) {
	pos := Position{X: 2, Y: 9}
	e := Event{RunID: "r", Type: EventFoodDepleted, Tick: 5, Timestamp: 1700000000, Pos: &pos}

	data, err := e.JSON()
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode event JSON: %v", err)
	}
	if decoded.Type != EventFoodDepleted || decoded.Tick != 5 || decoded.Pos == nil || *decoded.Pos != pos {
		t.Errorf("Event did not survive the round trip: %+v", decoded)
	}

	// Optional fields stay out of the wire format when unset.
	bare, _ := Event{Type: EventFirstFood}.JSON()
	if s := string(bare); strings.Contains(s, `"pos"`) || strings.Contains(s, `"path_length"`) {
		t.Errorf("Expected omitted optional fields, got %s", s)
	}
}
