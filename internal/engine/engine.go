package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go-image-forensics/internal/detect"
	apperrors "go-image-forensics/internal/errors"
	"go-image-forensics/internal/imaging"
	"go-image-forensics/internal/observer"
)

// ProgressFunc receives one checkpoint per finished detector. completed
// counts finished detectors, total is the battery size. Calls arrive in
// completion order, which matches battery order in sequential mode.
type ProgressFunc func(detector string, completed, total int)

// Entry is the outcome of one detector in a run. Exactly one of Result
// and Err is set.
type Entry struct {
	Name    string
	Result  *detect.Result
	Err     error
	Elapsed time.Duration
}

// ResultSet holds the per-detector outcomes of a run in battery order.
type ResultSet struct {
	Entries []Entry
}

// Get returns the entry for a detector name, or nil.
func (rs *ResultSet) Get(name string) *Entry {
	for i := range rs.Entries {
		if rs.Entries[i].Name == name {
			return &rs.Entries[i]
		}
	}
	return nil
}

// Scores returns the scores of every successful entry, keyed by
// detector name. Failed entries are absent.
func (rs *ResultSet) Scores() map[string]float64 {
	scores := make(map[string]float64, len(rs.Entries))
	for _, e := range rs.Entries {
		if e.Err == nil {
			scores[e.Name] = e.Result.Score
		}
	}
	return scores
}

// Failures returns the entries whose detector failed.
func (rs *ResultSet) Failures() []Entry {
	var failed []Entry
	for _, e := range rs.Entries {
		if e.Err != nil {
			failed = append(failed, e)
		}
	}
	return failed
}

// Options configures a detection engine.
type Options struct {
	// Params is passed unchanged to every detector.
	Params detect.Params
	// IncludeClone enables the quadratic clone detector.
	IncludeClone bool
	// Parallelism caps concurrent detectors. Values below 2 run the
	// battery sequentially in order.
	Parallelism int
	// OnProgress, when set, receives a checkpoint after each detector.
	OnProgress ProgressFunc
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		Params:      detect.DefaultParams(),
		Parallelism: 1,
	}
}

// WithClone returns a copy with clone detection enabled.
func (o Options) WithClone() Options {
	o.IncludeClone = true
	return o
}

// WithParallelism returns a copy with the detector concurrency cap
// replaced.
func (o Options) WithParallelism(n int) Options {
	o.Parallelism = n
	return o
}

// WithProgress returns a copy with the progress callback replaced.
func (o Options) WithProgress(fn ProgressFunc) Options {
	o.OnProgress = fn
	return o
}

// WithParams returns a copy with the detector parameters replaced.
func (o Options) WithParams(p detect.Params) Options {
	o.Params = p
	return o
}

// Engine runs a battery of detectors over one image source and collects
// their outcomes. Detectors are independent, so a failure in one is
// recorded in its entry and the rest still run; only an unusable input
// buffer aborts the whole run.
type Engine struct {
	detectors []detect.Detector
	opts      Options
	logger    *logrus.Logger
	publisher observer.Subject
}

// New creates an engine with the battery implied by opts. publisher may
// be nil when no event delivery is wanted.
func New(opts Options, logger *logrus.Logger, publisher observer.Subject) *Engine {
	battery := detect.DefaultBattery()
	if opts.IncludeClone {
		battery = detect.FullBattery()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		detectors: battery,
		opts:      opts,
		logger:    logger,
		publisher: publisher,
	}
}

// NewWithBattery creates an engine over an explicit detector list,
// bypassing the default battery selection.
func NewWithBattery(detectors []detect.Detector, opts Options, logger *logrus.Logger, publisher observer.Subject) *Engine {
	e := New(opts, logger, publisher)
	e.detectors = detectors
	return e
}

// Detectors returns the names of the battery in invocation order.
func (e *Engine) Detectors() []string {
	names := make([]string, len(e.detectors))
	for i, d := range e.detectors {
		names[i] = d.Name()
	}
	return names
}

// Run executes the battery over src. imageRef is an opaque label used
// only in events and logs. The returned error is non-nil only for
// battery-wide failures: an invalid buffer, an undersized image, or
// context cancellation between detectors.
func (e *Engine) Run(ctx context.Context, src *imaging.Source, imageRef string) (*ResultSet, error) {
	if err := e.validate(src); err != nil {
		return nil, err
	}

	start := time.Now()
	e.publish(ctx, observer.RunEvent{
		EventType: observer.RunStarted,
		Timestamp: start,
		ImageRef:  imageRef,
		Total:     len(e.detectors),
		Success:   true,
	})

	results := &ResultSet{Entries: make([]Entry, len(e.detectors))}
	var err error
	if e.opts.Parallelism > 1 {
		err = e.runParallel(ctx, src, imageRef, results)
	} else {
		err = e.runSequential(ctx, src, imageRef, results)
	}
	if err != nil {
		e.publish(ctx, observer.RunEvent{
			EventType:      observer.RunFailed,
			Timestamp:      time.Now(),
			ImageRef:       imageRef,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	e.publish(ctx, observer.RunEvent{
		EventType:      observer.RunCompleted,
		Timestamp:      time.Now(),
		ImageRef:       imageRef,
		Total:          len(e.detectors),
		Completed:      len(e.detectors),
		ProcessingTime: time.Since(start),
		Success:        true,
	})
	return results, nil
}

func (e *Engine) validate(src *imaging.Source) error {
	if src == nil || src.Buffer == nil {
		return apperrors.NewInputError("image source has no pixel buffer", nil)
	}
	// Images smaller than one analysis tile would yield empty grids from
	// every tiled detector; refuse them up front.
	minEdge := e.opts.Params.TileSize
	if src.Buffer.Width() < minEdge || src.Buffer.Height() < minEdge {
		return apperrors.NewInputError(
			fmt.Sprintf("image %dx%d is smaller than the %d pixel analysis tile",
				src.Buffer.Width(), src.Buffer.Height(), minEdge), nil)
	}
	return nil
}

func (e *Engine) runSequential(ctx context.Context, src *imaging.Source, imageRef string, results *ResultSet) error {
	for i, d := range e.detectors {
		select {
		case <-ctx.Done():
			return apperrors.NewTimeoutError("detection run canceled", ctx.Err())
		default:
		}
		results.Entries[i] = e.invoke(ctx, d, src, imageRef, i+1)
	}
	return nil
}

func (e *Engine) runParallel(ctx context.Context, src *imaging.Source, imageRef string, results *ResultSet) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)

	// A single aggregating goroutine serializes the callback and delivers
	// each checkpoint while the remaining detectors are still running.
	progress := make(chan int, len(e.detectors))
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		completed := 0
		for i := range progress {
			completed++
			if e.opts.OnProgress != nil {
				e.opts.OnProgress(e.detectors[i].Name(), completed, len(e.detectors))
			}
		}
	}()

	for i, d := range e.detectors {
		i, d := i, d
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return apperrors.NewTimeoutError("detection run canceled", gctx.Err())
			default:
			}
			results.Entries[i] = e.invoke(gctx, d, src, imageRef, 0)
			progress <- i
			return nil
		})
	}
	err := g.Wait()
	close(progress)
	<-drained
	return err
}

// invoke runs one detector and packages its outcome. position is the
// 1-based battery index for progress reporting; 0 suppresses the
// callback (parallel mode reports through its aggregator instead).
func (e *Engine) invoke(ctx context.Context, d detect.Detector, src *imaging.Source, imageRef string, position int) Entry {
	start := time.Now()
	entry := Entry{Name: d.Name()}
	func() {
		defer func() {
			if r := recover(); r != nil {
				entry.Err = apperrors.NewInternalError(
					fmt.Sprintf("detector %s panicked: %v", d.Name(), r), nil)
			}
		}()
		entry.Result, entry.Err = d.Run(src, e.opts.Params)
	}()
	entry.Elapsed = time.Since(start)

	if entry.Err != nil {
		e.logger.WithFields(logrus.Fields{
			"detector": entry.Name,
			"error":    entry.Err.Error(),
		}).Warn("Detector failed")
	}

	e.publish(ctx, observer.RunEvent{
		EventType:      observer.DetectorFinished,
		Timestamp:      time.Now(),
		ImageRef:       imageRef,
		Detector:       entry.Name,
		Completed:      position,
		Total:          len(e.detectors),
		ProcessingTime: entry.Elapsed,
		Success:        entry.Err == nil,
	})
	if position > 0 && e.opts.OnProgress != nil {
		e.opts.OnProgress(entry.Name, position, len(e.detectors))
	}
	return entry
}

func (e *Engine) publish(ctx context.Context, event observer.RunEvent) {
	if e.publisher != nil {
		e.publisher.NotifyObservers(ctx, event)
	}
}
