// Package widget implements the upload drop zone: it tracks drag, upload
// and pending state, posts accepted files through an Uploader and reports
// every outcome to a notification sink.
package widget

import (
	"context"
	"sync"
	"time"

	"github.com/indieinfra/dropper/dropzone"
	"github.com/indieinfra/dropper/logging"
	"github.com/indieinfra/dropper/notify"
	"github.com/indieinfra/dropper/transport"
)

// Uploader sends accepted files. *transport.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, files []dropzone.File, onProgress transport.ProgressFunc) error
}

// State is the transient UI state of one widget. Progress is the upload
// percentage and stays 0 while idle.
type State struct {
	DragOver  bool
	Uploading bool
	Progress  int
	Pending   bool
}

type Widget struct {
	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	// version counts state changes; delivered is the last version handed
	// to subscribers. Only one goroutine delivers at a time.
	version    uint64
	delivered  uint64
	delivering bool

	zone     *dropzone.Zone
	uploader Uploader
	sink     notify.Sink
	messages Messages
	logger   logging.Logger
	metrics  *Metrics
}

type Option func(*config)

type config struct {
	accept   dropzone.Accept
	zoneOpts dropzone.Options
	messages Messages
	logger   logging.Logger
	metrics  *Metrics
}

func WithAccept(accept dropzone.Accept) Option {
	return func(c *config) { c.accept = accept }
}

func WithZoneOptions(opts dropzone.Options) Option {
	return func(c *config) { c.zoneOpts = opts }
}

// WithMessages overrides notification texts; empty fields keep defaults.
func WithMessages(m Messages) Option {
	return func(c *config) { c.messages = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func New(uploader Uploader, sink notify.Sink, opts ...Option) *Widget {
	cfg := config{
		accept: dropzone.DefaultAccept(),
		logger: logging.Discard,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if sink == nil {
		sink = notify.LogSink{Logger: cfg.logger}
	}

	w := &Widget{
		subs:     map[int]func(State){},
		uploader: uploader,
		sink:     sink,
		messages: cfg.messages.withDefaults(),
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}

	w.zone = dropzone.NewZone(cfg.accept, cfg.zoneOpts, dropzone.Handlers{
		OnDragEnter:    func() { w.setDragOver(true) },
		OnDragLeave:    func() { w.setDragOver(false) },
		OnDropRejected: w.onDropRejected,
	})

	return w
}

// State returns a snapshot of the current state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Accept returns the filter files are checked against.
func (w *Widget) Accept() dropzone.Accept {
	return w.zone.Accept()
}

// Subscribe registers fn to receive state changes. The returned function
// removes it. fn runs outside the widget lock and is never called
// concurrently with itself. Changes made while a delivery is in flight are
// coalesced, so fn always sees states in order and ends on the current one.
func (w *Widget) Subscribe(fn func(State)) (cancel func()) {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

func (w *Widget) update(fn func(*State)) {
	w.mu.Lock()
	before := w.state
	fn(&w.state)
	if w.state != before {
		w.version++
	}
	w.mu.Unlock()

	w.deliver()
}

// deliver hands the latest state to subscribers. A caller that finds
// another delivery running returns at once; the running loop picks up its
// change before it stops.
func (w *Widget) deliver() {
	w.mu.Lock()
	if w.delivering {
		w.mu.Unlock()
		return
	}
	w.delivering = true

	for w.delivered != w.version {
		w.delivered = w.version
		state := w.state
		subs := make([]func(State), 0, len(w.subs))
		for _, s := range w.subs {
			subs = append(subs, s)
		}

		w.mu.Unlock()
		for _, s := range subs {
			s(state)
		}
		w.mu.Lock()
	}

	w.delivering = false
	w.mu.Unlock()
}

func (w *Widget) setDragOver(v bool) {
	w.update(func(s *State) { s.DragOver = v })
}

func (w *Widget) pending() bool {
	return w.State().Pending
}

// DragEnter marks a drag hovering over the zone. Ignored while pending.
func (w *Widget) DragEnter() {
	if w.pending() {
		return
	}
	w.zone.DragEnter()
}

// DragLeave clears the hover state. Ignored while pending.
func (w *Widget) DragLeave() {
	if w.pending() {
		return
	}
	w.zone.DragLeave()
}

// Drop checks files against the filter, reports rejections and uploads
// whatever was accepted. It returns once the upload has settled; callers
// that must stay responsive run it on its own goroutine. Overlapping drops
// are not serialised.
func (w *Widget) Drop(ctx context.Context, files []dropzone.File) {
	if w.pending() {
		return
	}

	accepted, rejected := w.zone.Drop(files)
	logging.WithUpload(w.logger, "", "", "", len(files)).Debugf("drop: %d accepted, %d rejected", len(accepted), len(rejected))

	w.Upload(ctx, accepted)
}

func (w *Widget) onDropRejected(rejected []dropzone.Rejection) {
	w.setDragOver(false)

	for _, r := range rejected {
		for _, e := range r.Errors {
			w.metrics.observeRejection(e.Code)
		}
	}

	w.sink.Notify(w.messages.rejection(rejected[0], w.zone.Accept()))
}

// Upload posts files in one request and notifies the sink of the outcome.
// Nothing is sent for an empty list. Failures are reported only through
// the sink. Uploading, Progress and DragOver are reset however the upload
// ends.
func (w *Widget) Upload(ctx context.Context, files []dropzone.File) {
	if len(files) == 0 {
		return
	}

	settled := false
	w.update(func(s *State) {
		s.Uploading = true
		s.Progress = 0
	})
	defer w.update(func(s *State) {
		settled = true
		s.Uploading = false
		s.Progress = 0
		s.DragOver = false
	})

	start := time.Now()
	err := w.uploader.Upload(ctx, files, func(p transport.Progress) {
		pct := p.Percent()
		w.update(func(s *State) {
			if !settled {
				s.Progress = pct
			}
		})
	})

	if err != nil {
		w.metrics.observeUpload(outcomeFailure, time.Since(start))
		w.sink.Notify(w.messages.failure(transport.MessageOf(err, w.messages.FailureFallback)))
		return
	}

	w.metrics.observeUpload(outcomeSuccess, time.Since(start))
	w.sink.Notify(w.messages.success())
}

// StartTransition sets Pending while fn runs. Drag and drop events are
// ignored while pending.
func (w *Widget) StartTransition(fn func()) {
	w.update(func(s *State) { s.Pending = true })
	defer w.update(func(s *State) { s.Pending = false })

	fn()
}

// View renders the current state.
func (w *Widget) View() View {
	return Render(w.State(), w.zone.Accept())
}
