package notify

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type stubLogger struct{ messages []string }

func (s *stubLogger) Printf(format string, v ...any) {
	s.messages = append(s.messages, fmt.Sprintf(format, v...))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	if _, ok := r.Last(); ok {
		t.Fatalf("expected empty recorder to have no last notification")
	}

	r.Notify(Notification{Title: "one"})
	r.Notify(Notification{Title: "two", Variant: Destructive})

	if r.Len() != 2 {
		t.Fatalf("expected 2 notifications, got %d", r.Len())
	}
	last, ok := r.Last()
	if !ok || last.Title != "two" || !last.Destructive() {
		t.Fatalf("unexpected last notification %+v", last)
	}

	all := r.All()
	all[0].Title = "mutated"
	if r.All()[0].Title != "one" {
		t.Fatalf("expected All to return a copy")
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(Notification{Title: "x"})
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Fatalf("expected 50 notifications, got %d", r.Len())
	}
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, nil, b)

	sink.Notify(Notification{Title: "hello"})

	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("expected both sinks to receive, got %d and %d", a.Len(), b.Len())
	}
}

func TestLogSinkLevels(t *testing.T) {
	logger := &stubLogger{}
	sink := LogSink{Logger: logger}

	sink.Notify(Notification{Title: "Upload successful!", Description: "Your files have been uploaded."})
	sink.Notify(Notification{Title: "Upload failed.", Description: "quota exceeded", Variant: Destructive})

	if len(logger.messages) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(logger.messages))
	}
	if !strings.HasPrefix(logger.messages[0], "INFO") || !strings.Contains(logger.messages[0], "Your files have been uploaded.") {
		t.Fatalf("unexpected info line %q", logger.messages[0])
	}
	if !strings.HasPrefix(logger.messages[1], "ERROR") || !strings.Contains(logger.messages[1], "quota exceeded") {
		t.Fatalf("unexpected error line %q", logger.messages[1])
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, false)

	sink.Notify(Notification{Title: "Upload successful!", Description: "Your files have been uploaded."})
	sink.Notify(Notification{Title: "image/gif type is not supported.", Variant: Destructive})

	want := "✓ Upload successful!\n  Your files have been uploaded.\n✗ image/gif type is not supported.\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriterSinkColor(t *testing.T) {
	var buf bytes.Buffer
	NewWriterSink(&buf, true).Notify(Notification{Title: "failed", Variant: Destructive})

	if !strings.Contains(buf.String(), "\033[31m") {
		t.Fatalf("expected red mark, got %q", buf.String())
	}
}

func TestSinkFunc(t *testing.T) {
	var got Notification
	SinkFunc(func(n Notification) { got = n }).Notify(Notification{Title: "t"})
	if got.Title != "t" {
		t.Fatalf("expected SinkFunc to receive notification")
	}
}
