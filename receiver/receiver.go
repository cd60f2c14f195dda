// Package receiver is a local stand-in for the upload endpoint. It checks
// requests the way a real endpoint would and answers with the same
// {"message": ...} error bodies, but keeps nothing.
package receiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/indieinfra/dropper/config"
	"github.com/indieinfra/dropper/dropzone"
	"github.com/indieinfra/dropper/logging"
)

const sniffLen = 3072

type Options struct {
	Path            string
	Field           string
	Accept          dropzone.Accept
	MaxPayloadSize  int64
	MaxMultipartMem int64
	Store           Store
	Logger          logging.Logger
}

// OptionsFromConfig maps the receiver and accept sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	accept := make(dropzone.Accept, 0, len(cfg.Accept))
	for _, rule := range cfg.Accept {
		accept = append(accept, dropzone.Rule{MIMEType: rule.MIME, Extensions: rule.Extensions})
	}

	return Options{
		Path:            cfg.Receiver.Path,
		Field:           cfg.Upload.Field,
		Accept:          accept,
		MaxPayloadSize:  cfg.Receiver.MaxPayloadSize,
		MaxMultipartMem: cfg.Receiver.MaxMultipartMem,
		Store: &DiscardStore{
			BaseURL: cfg.Receiver.PublicUrl,
			Pattern: NewLocationPattern(cfg.Receiver.LocationPattern),
		},
	}
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = "/api/storage/uploadthing"
	}
	if o.Field == "" {
		o.Field = "files"
	}
	if o.Accept == nil {
		o.Accept = dropzone.DefaultAccept()
	}
	if o.MaxPayloadSize <= 0 {
		o.MaxPayloadSize = 32 << 20
	}
	if o.MaxMultipartMem <= 0 {
		o.MaxMultipartMem = 8 << 20
	}
	if o.Store == nil {
		o.Store = &DiscardStore{}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Handler serves POST requests on opts.Path.
func Handler(opts Options) http.Handler {
	opts = opts.withDefaults()

	mux := http.NewServeMux()
	mux.Handle("POST "+opts.Path, HandleUpload(opts))

	return RequestLogger(opts.Logger, mux)
}

func HandleUpload(opts Options) http.HandlerFunc {
	opts = opts.withDefaults()

	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMultipart(w, r) {
			return
		}

		pm, err := ParseMultipart(w, r, opts.MaxPayloadSize, opts.MaxMultipartMem, opts.Field)
		if err != nil {
			if isTooLarge(err) {
				WriteHttpError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds the %d byte limit", opts.MaxPayloadSize))
				return
			}
			WriteHttpError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart body: %v", err))
			return
		}
		defer pm.CloseFiles()

		if len(pm.Files) == 0 {
			WriteHttpError(w, http.StatusBadRequest, fmt.Sprintf("No files provided under %q", opts.Field))
			return
		}

		type sniffed struct {
			mf   MultipartFile
			typ  string
			head []byte
		}

		checked := make([]sniffed, 0, len(pm.Files))
		for _, mf := range pm.Files {
			head := make([]byte, sniffLen)
			n, err := io.ReadFull(mf.File, head)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
				WriteHttpError(w, http.StatusBadRequest, fmt.Sprintf("Could not read %s", mf.Header.Filename))
				return
			}
			head = head[:n]

			typ := sniff(head)
			if !opts.Accept.Allows(dropzone.File{Type: typ}) {
				WriteHttpError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("%s type is not supported.", typ))
				return
			}

			checked = append(checked, sniffed{mf: mf, typ: typ, head: head})
		}

		receipt := Receipt{Files: make([]StoredFile, 0, len(checked))}
		for _, c := range checked {
			body := io.MultiReader(bytes.NewReader(c.head), c.mf.File)
			stored, err := opts.Store.Put(r.Context(), c.mf.Header.Filename, c.typ, body)
			if err != nil {
				if ul := logging.FromContext(r.Context()); ul != nil {
					ul.Errorf("store %s failed: %v", c.mf.Header.Filename, err)
				}
				WriteHttpError(w, http.StatusInternalServerError, "Could not store upload")
				return
			}
			receipt.Files = append(receipt.Files, *stored)
		}

		WriteCreated(w, receipt)
	}
}

// sniff looks at content only. Part headers and filenames are
// client-controlled and not trusted here.
func sniff(head []byte) string {
	mediaType, _, err := mime.ParseMediaType(mimetype.Detect(head).String())
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}

// Server runs the receiver until ctx is cancelled.
type Server struct {
	srv *http.Server
}

func NewServer(address string, port int, h http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(address, strconv.Itoa(port)),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Serve listens on l and shuts down gracefully when ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// ListenAndServe binds the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}

	log.Printf("serving uploads on %q", s.srv.Addr)
	return s.Serve(ctx, l)
}
