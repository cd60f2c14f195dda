// Package notify carries transient user-facing notifications from the
// widget to whatever presents them.
package notify

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/indieinfra/dropper/logging"
)

type Variant string

const (
	Default     Variant = "default"
	Destructive Variant = "destructive"
)

type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

func (n Notification) Destructive() bool {
	return n.Variant == Destructive
}

// Sink presents notifications. Implementations must be safe for
// concurrent use.
type Sink interface {
	Notify(Notification)
}

type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Multi fans a notification out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(n Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// LogSink writes notifications through a Printf logger, ERROR for
// destructive ones and INFO otherwise.
type LogSink struct {
	Logger logging.Logger
}

func (s LogSink) Notify(n Notification) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}

	level := "INFO"
	if n.Destructive() {
		level = "ERROR"
	}
	l.Printf("%s notification: %s: %s", level, n.Title, n.Description)
}

// WriterSink renders notifications as terminal toasts.
type WriterSink struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func NewWriterSink(w io.Writer, color bool) *WriterSink {
	return &WriterSink{w: w, color: color}
}

func (s *WriterSink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := "✓"
	if n.Destructive() {
		mark = "✗"
	}
	if s.color {
		if n.Destructive() {
			mark = "\033[31m" + mark + "\033[0m"
		} else {
			mark = "\033[32m" + mark + "\033[0m"
		}
	}

	if n.Description == "" {
		fmt.Fprintf(s.w, "%s %s\n", mark, n.Title)
		return
	}
	fmt.Fprintf(s.w, "%s %s\n  %s\n", mark, n.Title, n.Description)
}
