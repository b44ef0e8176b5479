package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType classifies a detection run event.
type EventType string

const (
	// RunStarted when a detection run begins
	RunStarted EventType = "run_started"
	// RunCompleted when every enabled detector has finished
	RunCompleted EventType = "run_completed"
	// RunFailed when the run aborts before completing the battery
	RunFailed EventType = "run_failed"
	// DetectorFinished after each individual detector, success or not
	DetectorFinished EventType = "detector_finished"
)

// RunEvent describes progress of a detection run. For DetectorFinished
// events, Detector carries the detector name and Completed/Total the
// battery position.
type RunEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageRef       string                 `json:"image_ref"`
	Detector       string                 `json:"detector,omitempty"`
	Completed      int                    `json:"completed"`
	Total          int                    `json:"total"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Observer receives detection run events.
type Observer interface {
	OnEvent(ctx context.Context, event RunEvent)
	GetObserverName() string
}

// Subject publishes detection run events to subscribed observers.
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event RunEvent)
}

// LoggingObserver writes run events to the structured log.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles run events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event RunEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"image_ref":  event.ImageRef,
		"success":    event.Success,
	}
	if event.Detector != "" {
		fields["detector"] = event.Detector
		fields["completed"] = event.Completed
		fields["total"] = event.Total
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case RunStarted:
		o.logger.WithFields(fields).Info("Detection run started")
	case RunCompleted:
		o.logger.WithFields(fields).Info("Detection run completed")
	case RunFailed:
		o.logger.WithFields(fields).Error("Detection run failed")
	case DetectorFinished:
		o.logger.WithFields(fields).Debug("Detector finished")
	default:
		o.logger.WithFields(fields).Info("Detection event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver accumulates counters across detection runs.
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalRuns           int64
	successfulRuns      int64
	failedRuns          int64
	detectorsRun        int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() Observer {
	return &MetricsObserver{}
}

// OnEvent handles run events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event RunEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case RunStarted:
		o.totalRuns++
	case RunCompleted:
		o.successfulRuns++
		o.totalProcessingTime += event.ProcessingTime
	case RunFailed:
		o.failedRuns++
	case DetectorFinished:
		o.detectorsRun++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulRuns > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulRuns)
	}

	return map[string]interface{}{
		"total_runs":            o.totalRuns,
		"successful_runs":       o.successfulRuns,
		"failed_runs":           o.failedRuns,
		"detectors_run":         o.detectorsRun,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event RunEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
