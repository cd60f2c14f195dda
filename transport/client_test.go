package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/indieinfra/dropper/dropzone"
)

type receivedPart struct {
	field, filename, contentType string
	data                         []byte
}

type capture struct {
	mu     sync.Mutex
	parts  []receivedPart
	header http.Header
}

func (c *capture) Parts() []receivedPart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]receivedPart(nil), c.parts...)
}

func (c *capture) Header() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header
}

func captureServer(t *testing.T, status int, body string) (*httptest.Server, *capture) {
	t.Helper()

	c := &capture{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reader, err := r.MultipartReader()
		if err != nil {
			t.Errorf("expected multipart request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var parts []receivedPart
		for {
			p, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("failed to read part: %v", err)
				return
			}
			data, _ := io.ReadAll(p)
			parts = append(parts, receivedPart{
				field:       p.FormName(),
				filename:    p.FileName(),
				contentType: p.Header.Get("Content-Type"),
				data:        data,
			})
		}

		c.mu.Lock()
		c.parts = parts
		c.header = r.Header.Clone()
		c.mu.Unlock()

		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, c
}

func TestUploadSendsRepeatedFilesParts(t *testing.T) {
	srv, rec := captureServer(t, http.StatusCreated, "")

	files := []dropzone.File{
		dropzone.NewFile("a.png", "image/png", 3, func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("abc")), nil
		}),
		dropzone.NewFile(`we"ird.jpg`, "image/jpeg", 4, func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("defg")), nil
		}),
	}

	c := New(srv.URL, WithHeader("X-Client", "dropper"))
	if err := c.Upload(context.Background(), files, nil); err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}

	parts := rec.Parts()
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	for i, want := range []receivedPart{
		{field: "files", filename: "a.png", contentType: "image/png", data: []byte("abc")},
		{field: "files", filename: `we"ird.jpg`, contentType: "image/jpeg", data: []byte("defg")},
	} {
		got := parts[i]
		if got.field != want.field || got.filename != want.filename || got.contentType != want.contentType || !bytes.Equal(got.data, want.data) {
			t.Fatalf("part %d: expected %+v, got %+v", i, want, got)
		}
	}

	header := rec.Header()
	if header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if header.Get("X-Client") != "dropper" {
		t.Fatalf("expected extra header to be sent")
	}
	if !strings.HasPrefix(header.Get("Content-Type"), "multipart/form-data; boundary=") {
		t.Fatalf("unexpected content type %q", header.Get("Content-Type"))
	}
}

func TestUploadCustomField(t *testing.T) {
	srv, rec := captureServer(t, http.StatusOK, "")

	c := New(srv.URL, WithField("attachments"))
	if err := c.Upload(context.Background(), []dropzone.File{dropzone.FromBytes("x.png", []byte("x"))}, nil); err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	if rec.Parts()[0].field != "attachments" {
		t.Fatalf("expected custom field name, got %q", rec.Parts()[0].field)
	}
}

func TestUploadDefaultsPartContentType(t *testing.T) {
	srv, rec := captureServer(t, http.StatusOK, "")

	f := dropzone.NewFile("blob", "", 1, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("z")), nil
	})
	if err := New(srv.URL).Upload(context.Background(), []dropzone.File{f}, nil); err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	if got := rec.Parts()[0].contentType; got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %q", got)
	}
}

func TestUploadReportsProgressToCompletion(t *testing.T) {
	srv, _ := captureServer(t, http.StatusOK, "")

	data := bytes.Repeat([]byte("x"), 256<<10)
	var (
		mu     sync.Mutex
		events []Progress
	)

	err := New(srv.URL).Upload(context.Background(), []dropzone.File{dropzone.FromBytes("big.png", data)}, func(p Progress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(events) == 0 {
		t.Fatalf("expected progress events")
	}
	last := events[len(events)-1]
	if last.Total <= int64(len(data)) {
		t.Fatalf("expected total to include framing, got %d", last.Total)
	}
	if last.Loaded != last.Total || last.Percent() != 100 {
		t.Fatalf("expected final event at 100%%, got %+v", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Loaded < events[i-1].Loaded {
			t.Fatalf("expected monotonic progress, got %+v then %+v", events[i-1], events[i])
		}
	}
}

func TestUploadUnknownSizeHasZeroTotal(t *testing.T) {
	srv, rec := captureServer(t, http.StatusOK, "")

	f := dropzone.NewFile("stream.png", "image/png", -1, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("streamed")), nil
	})

	var (
		mu   sync.Mutex
		last Progress
	)
	err := New(srv.URL).Upload(context.Background(), []dropzone.File{f}, func(p Progress) {
		mu.Lock()
		last = p
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if last.Total != 0 || last.Percent() != 0 {
		t.Fatalf("expected unknown total to report 0%%, got %+v", last)
	}
	if string(rec.Parts()[0].data) != "streamed" {
		t.Fatalf("unexpected data %q", rec.Parts()[0].data)
	}
}

func TestUploadErrorResponse(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInsufficientStorage, `{"message":"quota exceeded"}`)

	err := New(srv.URL).Upload(context.Background(), []dropzone.File{dropzone.FromBytes("a.png", []byte("a"))}, nil)

	var re *ResponseError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResponseError, got %v", err)
	}
	if re.StatusCode != http.StatusInsufficientStorage {
		t.Fatalf("unexpected status %d", re.StatusCode)
	}
	if got := MessageOf(err, "fallback"); got != "quota exceeded" {
		t.Fatalf("expected server message, got %q", got)
	}
}

func TestUploadErrorWithoutBody(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError, "")

	err := New(srv.URL).Upload(context.Background(), []dropzone.File{dropzone.FromBytes("a.png", []byte("a"))}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := MessageOf(err, "Something went wrong."); got != "Something went wrong." {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestUploadEarlyRejectionDoesNotHang(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		io.WriteString(w, `{"message":"payload too large"}`)
	}))
	defer srv.Close()

	data := bytes.Repeat([]byte("x"), 4<<20)
	done := make(chan error, 1)
	go func() {
		done <- New(srv.URL).Upload(context.Background(), []dropzone.File{dropzone.FromBytes("huge.png", data)}, nil)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error for rejected upload")
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("upload did not return after early rejection")
	}
}

func TestUploadNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Upload(context.Background(), []dropzone.File{dropzone.FromBytes("a.png", []byte("a"))}, nil)
	if err == nil {
		t.Fatalf("expected network error")
	}

	var re *ResponseError
	if errors.As(err, &re) {
		t.Fatalf("expected transport error, not response error")
	}
}

func TestUploadUnreadableFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	broken := dropzone.NewFile("gone.png", "image/png", 10, func() (io.ReadCloser, error) {
		return nil, errors.New("file vanished")
	})

	if err := New(srv.URL).Upload(context.Background(), []dropzone.File{broken}, nil); err == nil {
		t.Fatalf("expected error when file cannot be opened")
	}
}

func TestUploadNoFiles(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	if err := New(srv.URL).Upload(context.Background(), nil, nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
	if called {
		t.Fatalf("expected no request for empty upload")
	}
}

func TestUploadHonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(srv.URL).Upload(ctx, []dropzone.File{dropzone.FromBytes("a.png", []byte("a"))}, nil)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("upload ignored cancellation")
	}
}

func TestWithTimeout(t *testing.T) {
	c := New("http://example.org", WithTimeout(5*time.Second))
	if c.http.Timeout != 5*time.Second {
		t.Fatalf("expected timeout to be set, got %v", c.http.Timeout)
	}

	if New("http://example.org").http.Timeout != 0 {
		t.Fatalf("expected no timeout by default")
	}
}

func TestUploadReplaysBodyOnRedirect(t *testing.T) {
	for _, status := range []int{http.StatusTemporaryRedirect, http.StatusPermanentRedirect} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			target, rec := captureServer(t, http.StatusCreated, "")

			moved := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				http.Redirect(w, r, target.URL, status)
			}))
			t.Cleanup(moved.Close)

			files := []dropzone.File{
				dropzone.NewFile("a.png", "image/png", 3, func() (io.ReadCloser, error) {
					return io.NopCloser(strings.NewReader("abc")), nil
				}),
			}

			if err := New(moved.URL).Upload(context.Background(), files, nil); err != nil {
				t.Fatalf("expected redirected upload to succeed, got %v", err)
			}

			parts := rec.Parts()
			if len(parts) != 1 || string(parts[0].data) != "abc" || parts[0].field != "files" {
				t.Fatalf("expected the file to reach the redirect target, got %+v", parts)
			}
		})
	}
}
