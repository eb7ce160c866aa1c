// Package events fans parcel lifecycle events out to the configured publishers.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chachabrian/mooveit-parcels/internal/observability"
)

type Type string

const (
	ParcelCreated   Type = "parcel_created"
	ParcelPaid      Type = "parcel_paid"
	ParcelAssigned  Type = "parcel_assigned"
	ParcelPicked    Type = "parcel_picked"
	ParcelDelivered Type = "parcel_delivered"
	ParcelCashedOut Type = "parcel_cashed_out"
)

// ParcelEvent is emitted after a parcel state change has been committed.
type ParcelEvent struct {
	Type       Type             `json:"type"`
	ParcelID   uint             `json:"parcelId"`
	TrackingID string           `json:"trackingId"`
	ParcelName string           `json:"parcelName,omitempty"`
	Status     string           `json:"status"`
	CreatedBy  string           `json:"createdBy"`
	RiderEmail string           `json:"riderEmail,omitempty"`
	RiderName  string           `json:"riderName,omitempty"`
	Receiver   string           `json:"receiverPhone,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	At         time.Time        `json:"at"`
}

// Recipients returns the distinct identities that should hear about e.
func (e ParcelEvent) Recipients() []string {
	out := make([]string, 0, 2)
	if e.CreatedBy != "" {
		out = append(out, e.CreatedBy)
	}
	if e.RiderEmail != "" && e.RiderEmail != e.CreatedBy {
		out = append(out, e.RiderEmail)
	}
	return out
}

// Publisher delivers events to one downstream system.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, e ParcelEvent) error
}

const (
	// DefaultQueueSize is how many events each publisher may fall behind
	// before new ones are dropped for it.
	DefaultQueueSize = 256
	// DefaultPublishTimeout bounds a single Publish call.
	DefaultPublishTimeout = 10 * time.Second
)

// Fanout hands every event to all publishers in the background. Each
// publisher has its own queue and worker, so a slow one delays neither the
// request that produced the event nor the other publishers, and sees events
// in the order they were published. A failing publisher is logged and
// counted; it never fails the request.
type Fanout struct {
	log     *slog.Logger
	timeout time.Duration
	sinks   []*sink
	pending sync.WaitGroup
	workers sync.WaitGroup
}

type sink struct {
	publisher Publisher
	queue     chan queued
}

type queued struct {
	ctx   context.Context
	event ParcelEvent
}

func NewFanout(log *slog.Logger, publishers ...Publisher) *Fanout {
	f := &Fanout{log: log, timeout: DefaultPublishTimeout}
	for _, p := range publishers {
		f.Add(p)
	}
	return f
}

// WithTimeout sets the per-publish deadline. Call it before events flow.
func (f *Fanout) WithTimeout(d time.Duration) *Fanout {
	if d > 0 {
		f.timeout = d
	}
	return f
}

// Add registers another publisher and starts its worker. Not safe to call
// once requests are served.
func (f *Fanout) Add(p Publisher) {
	s := &sink{publisher: p, queue: make(chan queued, DefaultQueueSize)}
	f.sinks = append(f.sinks, s)
	f.workers.Add(1)
	go f.run(s)
}

// Publish queues e for every publisher and returns immediately. The values
// of ctx travel with the event but its cancellation does not, so publishing
// outlives the request.
func (f *Fanout) Publish(ctx context.Context, e ParcelEvent) {
	detached := context.WithoutCancel(ctx)
	for _, s := range f.sinks {
		f.pending.Add(1)
		select {
		case s.queue <- queued{ctx: detached, event: e}:
		default:
			f.pending.Done()
			observability.EventPublishErrors.WithLabelValues(s.publisher.Name()).Inc()
			f.log.Warn("event queue full, dropping event",
				"publisher", s.publisher.Name(),
				"event", e.Type,
				"parcel_id", e.ParcelID,
			)
		}
	}
}

func (f *Fanout) run(s *sink) {
	defer f.workers.Done()
	for q := range s.queue {
		f.deliver(s.publisher, q)
		f.pending.Done()
	}
}

func (f *Fanout) deliver(p Publisher, q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, f.timeout)
	defer cancel()
	if err := p.Publish(ctx, q.event); err != nil {
		observability.EventPublishErrors.WithLabelValues(p.Name()).Inc()
		f.log.Warn("event publish failed",
			"publisher", p.Name(),
			"event", q.event.Type,
			"parcel_id", q.event.ParcelID,
			"error", err,
		)
	}
}

// Flush blocks until every event queued so far has been handled. It must
// not run concurrently with Publish.
func (f *Fanout) Flush() {
	f.pending.Wait()
}

// Close drains the queues and stops the workers. Publish must not be called
// after Close.
func (f *Fanout) Close() {
	for _, s := range f.sinks {
		close(s.queue)
	}
	f.workers.Wait()
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []ParcelEvent
}

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Publish(_ context.Context, e ParcelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []ParcelEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ParcelEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	evs := r.Events()
	out := make([]Type, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}
