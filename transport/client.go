package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/indieinfra/dropper/dropzone"
	"github.com/indieinfra/dropper/logging"
)

const DefaultField = "files"

// Client posts dropped files to a single endpoint as one multipart request.
type Client struct {
	endpoint string
	field    string
	http     *http.Client
	header   http.Header
	logger   logging.Logger
}

type Option func(*Client)

// WithField sets the multipart field name repeated for every file.
func WithField(field string) Option {
	return func(c *Client) {
		if field != "" {
			c.field = field
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds the whole request. Zero keeps waiting indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		field:    DefaultField,
		http:     &http.Client{},
		header:   make(http.Header),
		logger:   logging.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Field() string { return c.field }

// Upload sends every file as a part named after the client's field. Any
// 2xx response is success; other statuses come back as *ResponseError.
// onProgress may be nil.
func (c *Client) Upload(ctx context.Context, files []dropzone.File, onProgress ProgressFunc) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	requestID := uuid.NewString()
	ul := logging.WithUpload(c.logger, http.MethodPost, c.endpoint, requestID, len(files))

	boundary := multipart.NewWriter(io.Discard).Boundary()
	total, err := contentLength(boundary, c.field, files)
	if err != nil {
		return err
	}

	// Each body streams the files afresh, so 307 and 308 redirects can
	// replay the request through GetBody.
	newBody := func() io.ReadCloser {
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(writeBody(pw, boundary, c.field, files))
		}()
		return &progressReader{r: pr, total: total, fn: onProgress}
	}

	body := newBody()
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return newBody(), nil
	}

	req.ContentLength = total
	if total == 0 {
		req.ContentLength = -1
	}
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	ul.Debugf("sending %d bytes", total)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		ul.Errorf("upload failed after %s: %v", time.Since(start), err)
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		ul.Infof("upload finished with %s in %s", resp.Status, time.Since(start))
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	rerr := &ResponseError{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
	ul.Errorf("%v", rerr)

	return rerr
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func partHeader(field string, f dropzone.File) textproto.MIMEHeader {
	contentType := f.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentType)
	return h
}

// contentLength measures the framing with empty parts and adds the file
// sizes. It returns 0 when any size is unknown.
func contentLength(boundary, field string, files []dropzone.File) (int64, error) {
	var sizes int64
	for _, f := range files {
		if f.Size < 0 {
			return 0, nil
		}
		sizes += f.Size
	}

	cw := &countingWriter{}
	mw := multipart.NewWriter(cw)
	if err := mw.SetBoundary(boundary); err != nil {
		return 0, err
	}

	for _, f := range files {
		if _, err := mw.CreatePart(partHeader(field, f)); err != nil {
			return 0, err
		}
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	return cw.n + sizes, nil
}

func writeBody(w io.Writer, boundary, field string, files []dropzone.File) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return err
	}

	for _, f := range files {
		part, err := mw.CreatePart(partHeader(field, f))
		if err != nil {
			return err
		}

		if err := copyFile(part, f); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
	}

	return mw.Close()
}

func copyFile(dst io.Writer, f dropzone.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(dst, rc)
	return err
}

type countingWriter struct{ n int64 }

func (cw *countingWriter) Write(p []byte) (int, error) {
	cw.n += int64(len(p))
	return len(p), nil
}
