package observer

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []RunEvent
	done   chan struct{}
}

func newRecordingObserver(expected int) *recordingObserver {
	return &recordingObserver{done: make(chan struct{}, expected)}
}

func (o *recordingObserver) OnEvent(ctx context.Context, event RunEvent) {
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
	o.done <- struct{}{}
}

func (o *recordingObserver) GetObserverName() string { return "recording_observer" }

func (o *recordingObserver) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-o.done:
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for event delivery")
		}
	}
}

func TestEventPublisherDeliversToSubscribers(t *testing.T) {
	publisher := NewEventPublisher()
	recorder := newRecordingObserver(2)
	publisher.Subscribe(recorder)

	publisher.NotifyObservers(context.Background(), RunEvent{EventType: RunStarted, ImageRef: "a"})
	publisher.NotifyObservers(context.Background(), RunEvent{EventType: RunCompleted, ImageRef: "a"})
	recorder.wait(t, 2)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(recorder.events))
	}
}

func TestEventPublisherUnsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	recorder := newRecordingObserver(1)
	publisher.Subscribe(recorder)
	publisher.Unsubscribe(recorder)

	publisher.NotifyObservers(context.Background(), RunEvent{EventType: RunStarted})

	select {
	case <-recorder.done:
		t.Fatal("Expected no delivery after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMetricsObserverCounts(t *testing.T) {
	metrics := NewMetricsObserver().(*MetricsObserver)
	ctx := context.Background()

	metrics.OnEvent(ctx, RunEvent{EventType: RunStarted})
	metrics.OnEvent(ctx, RunEvent{EventType: DetectorFinished})
	metrics.OnEvent(ctx, RunEvent{EventType: DetectorFinished})
	metrics.OnEvent(ctx, RunEvent{EventType: RunCompleted, ProcessingTime: 2 * time.Second})
	metrics.OnEvent(ctx, RunEvent{EventType: RunStarted})
	metrics.OnEvent(ctx, RunEvent{EventType: RunFailed})

	got := metrics.GetMetrics()
	if got["total_runs"].(int64) != 2 {
		t.Errorf("Expected 2 total runs, got %v", got["total_runs"])
	}
	if got["successful_runs"].(int64) != 1 {
		t.Errorf("Expected 1 successful run, got %v", got["successful_runs"])
	}
	if got["failed_runs"].(int64) != 1 {
		t.Errorf("Expected 1 failed run, got %v", got["failed_runs"])
	}
	if got["detectors_run"].(int64) != 2 {
		t.Errorf("Expected 2 detectors run, got %v", got["detectors_run"])
	}
	if got["avg_processing_time"].(time.Duration) != 2*time.Second {
		t.Errorf("Expected 2s average processing time, got %v", got["avg_processing_time"])
	}
}
