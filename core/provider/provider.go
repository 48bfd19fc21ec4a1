package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"datasync/core/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Provider owns a keyed collection and keeps it in sync with an endpoint.
type Provider struct {
	origin      string
	fetcher     Fetcher
	constructor Constructor
	keyOf       KeyFunc
	log         *zap.Logger
	tracer      trace.Tracer
	bus         *events.Bus[Event]

	// mu guards objs.
	mu   sync.RWMutex
	objs *collection

	// passMu serializes applying results; applied is the start sequence of
	// the last applied pass.
	passMu  sync.Mutex
	applied uint64
	seq     atomic.Uint64

	timerMu  sync.Mutex
	stopLoop context.CancelFunc
	loopDone chan struct{}
}

// Option configures a Provider.
type Option func(*Provider)

// WithOrigin sets the prefix prepended to every endpoint.
func WithOrigin(origin string) Option {
	return func(p *Provider) { p.origin = origin }
}

// WithFetcher sets the fetcher used by passes.
func WithFetcher(f Fetcher) Option {
	return func(p *Provider) { p.fetcher = f }
}

// WithConstructor sets how decoded elements become stored objects.
func WithConstructor(c Constructor) Option {
	return func(p *Provider) { p.constructor = c }
}

// WithKeyFunc sets how object keys are extracted.
func WithKeyFunc(fn KeyFunc) Option {
	return func(p *Provider) { p.keyOf = fn }
}

// WithLogger sets the logger. Passes are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithTracer sets the tracer used to record a span per pass.
func WithTracer(t trace.Tracer) Option {
	return func(p *Provider) { p.tracer = t }
}

// WithBus makes the provider emit on an existing bus, for example one shared by
// several providers.
func WithBus(b *events.Bus[Event]) Option {
	return func(p *Provider) { p.bus = b }
}

// New creates a provider. Without options it fetches over HTTP with a 30
// second timeout, keeps plain values and keys them by their "key" field.
func New(opts ...Option) *Provider {
	p := &Provider{
		constructor: Plain,
		keyOf:       FieldKey(DefaultKeyField),
		log:         zap.NewNop(),
		tracer:      noop.NewTracerProvider().Tracer(""),
		objs:        newCollection(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = NewHTTPFetcher(nil, 30*time.Second)
	}
	if p.bus == nil {
		p.bus = events.New[Event]()
	}
	return p
}

// Origin returns the configured origin.
func (p *Provider) Origin() string { return p.origin }

// Bus returns the bus events are emitted on.
func (p *Provider) Bus() *events.Bus[Event] { return p.bus }

// On subscribes fn to the named event and returns the unsubscribe function.
func (p *Provider) On(name string, fn events.Handler[Event]) func() {
	return p.bus.Subscribe(name, fn)
}

// Request cancels any repeating fetch, runs one pass now and, when interval is
// positive, starts repeating passes at that period until Cancel is called or
// ctx is done. It returns the outcome of the immediate pass.
func (p *Provider) Request(ctx context.Context, endpoint string, req Request, interval time.Duration) (bool, error) {
	p.Cancel()
	changed, err := p.FetchOnce(ctx, endpoint, req)
	if interval > 0 {
		p.startLoop(ctx, endpoint, req, interval)
	}
	return changed, err
}

// FetchOnce runs exactly one pass without touching the repeating timer. The
// outcome is reported both as events and as return values.
func (p *Provider) FetchOnce(ctx context.Context, endpoint string, req Request) (bool, error) {
	return p.pass(ctx, endpoint, req)
}

// Cancel stops repeating passes. A pass already in flight completes normally.
// Calling Cancel without a running timer does nothing.
func (p *Provider) Cancel() {
	p.timerMu.Lock()
	stop := p.stopLoop
	p.stopLoop = nil
	p.timerMu.Unlock()

	if stop != nil {
		stop()
	}
}

// Wait blocks until the repeating loop started by the last Request, and any
// loop it replaced, has exited. That happens after Cancel or once the Request
// context is done.
func (p *Provider) Wait() {
	p.timerMu.Lock()
	done := p.loopDone
	p.timerMu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Provider) startLoop(ctx context.Context, endpoint string, req Request, interval time.Duration) {
	loopCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})

	// Concurrent Requests each start a loop; only the newest survives.
	p.timerMu.Lock()
	prevStop, prevDone := p.stopLoop, p.loopDone
	p.stopLoop, p.loopDone = stop, done
	p.timerMu.Unlock()
	if prevStop != nil {
		prevStop()
	}

	go func() {
		defer func() {
			if prevDone != nil {
				<-prevDone
			}
			close(done)
		}()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				// The pass keeps the caller's context so Cancel never aborts
				// one in flight.
				_, _ = p.pass(ctx, endpoint, req)
			}
		}
	}()
}

// Objects returns a snapshot of the stored objects in insertion order.
func (p *Provider) Objects() []any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.objs.snapshotObjects()
}

// Keys returns a snapshot of the stored keys in insertion order.
func (p *Provider) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.objs.snapshotKeys()
}

// ObjectForKey returns the object stored under key.
func (p *Provider) ObjectForKey(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.objs.get(key)
}

// Len returns the number of stored objects.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.objs.len()
}

// Clear removes every stored object without emitting deleted events.
func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objs.clear()
}

func (p *Provider) emit(ev Event) {
	ev.Sender = p
	p.bus.Emit(ev.Type, ev)
}

// pass runs one fetch-decode-reconcile cycle.
func (p *Provider) pass(ctx context.Context, endpoint string, req Request) (changed bool, err error) {
	seq := p.seq.Add(1)
	passID := uuid.NewString()
	url := ResolveURL(p.origin, endpoint)
	log := p.log.With(zap.String("pass_id", passID), zap.String("url", url))

	ctx, span := p.tracer.Start(ctx, "provider.pass", trace.WithAttributes(
		attribute.String("provider.url", url),
		attribute.String("provider.pass_id", passID),
	))
	defer span.End()

	p.emit(Event{Type: EventStarted, PassID: passID, URL: url})
	log.Debug("Pass started")

	data, err := p.fetch(ctx, url, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("Pass failed", zap.Error(err))
		p.emit(Event{Type: EventError, PassID: passID, URL: url, Err: err})
		return false, err
	}

	changed, pending, stale, err := p.apply(passID, data, seq)
	// Listeners may start passes of their own, so events fire outside passMu.
	for _, ev := range pending {
		p.emit(ev)
	}

	switch {
	case stale:
		log.Debug("Discarding result of superseded pass", zap.Uint64("seq", seq))
		span.SetAttributes(attribute.Bool("provider.stale", true))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("Pass failed", zap.Error(err))
		p.emit(Event{Type: EventError, PassID: passID, URL: url, Err: err})
		return changed, err
	default:
		span.SetAttributes(attribute.Bool("provider.changed", changed))
		log.Debug("Pass completed", zap.Bool("changed", changed), zap.Int("objects", p.Len()))
	}

	p.emit(Event{Type: EventCompleted, PassID: passID, URL: url, Changed: changed})
	return changed, nil
}

// apply reconciles data into the collection under passMu and returns the
// collection events to emit once the lock is released. A result from a pass
// that started before the last applied one is reported as stale.
func (p *Provider) apply(passID string, data any, seq uint64) (changed bool, pending []Event, stale bool, err error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	if seq < p.applied {
		return false, nil, true, nil
	}
	p.applied = seq

	b := &batch{passID: passID}
	if list, ok := data.([]any); ok {
		changed, err = p.reconcileSet(b, list)
	} else {
		_, changed, err = p.reconcileOne(b, data)
	}
	return changed, b.events, false, err
}

// batch collects the collection events of one pass.
type batch struct {
	passID string
	events []Event
}

func (b *batch) add(typ string, obj, existing any) {
	b.events = append(b.events, Event{Type: typ, PassID: b.passID, Object: obj, Existing: existing})
}

// fetch performs the call and decodes the body, turning a non-success
// response into an *Error.
func (p *Provider) fetch(ctx context.Context, url string, req Request) (any, error) {
	if p.fetcher == nil {
		return nil, ErrNoFetcher
	}
	req.URL = url
	resp, err := p.fetcher.Fetch(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	data, decodeErr := DecodeBody(resp)
	if !resp.OK() {
		return nil, errorFromResponse(resp, data)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode body of %s: %w", url, decodeErr)
	}
	return data, nil
}

// reconcileOne constructs one object and adds or replaces it. It returns the
// key touched, if any, and whether the collection changed.
func (p *Provider) reconcileOne(b *batch, data any) (string, bool, error) {
	obj, err := p.constructor(data)
	if err != nil {
		return "", false, err
	}
	key, hasKey := p.keyOf(obj)

	if !hasKey {
		b.add(EventAdded, obj, nil)
		return "", true, nil
	}

	p.mu.Lock()
	existing, replaced := p.objs.set(key, obj)
	p.mu.Unlock()

	if !replaced {
		b.add(EventAdded, obj, nil)
		return key, true, nil
	}
	if objectsEqual(obj, existing) {
		return key, false, nil
	}
	b.add(EventChanged, obj, existing)
	return key, true, nil
}

// reconcileSet treats list as the full contents of the collection: elements
// are added or replaced in order, then keys not present in list are deleted in
// collection order.
func (p *Provider) reconcileSet(b *batch, list []any) (bool, error) {
	p.mu.RLock()
	marked := make(map[string]struct{}, p.objs.len())
	for _, k := range p.objs.keys {
		marked[k] = struct{}{}
	}
	p.mu.RUnlock()

	changed := false
	for _, elem := range list {
		key, elemChanged, err := p.reconcileOne(b, elem)
		if err != nil {
			return changed, err
		}
		if key != "" {
			delete(marked, key)
		}
		changed = changed || elemChanged
	}

	if len(marked) == 0 {
		return changed, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.objs.snapshotKeys() {
		if _, ok := marked[k]; !ok {
			continue
		}
		obj, _ := p.objs.get(k)
		p.objs.remove(k)
		b.add(EventDeleted, obj, nil)
	}
	return true, nil
}
