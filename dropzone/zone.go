package dropzone

import "fmt"

type ErrorCode string

const (
	FileInvalidType ErrorCode = "file-invalid-type"
	FileTooLarge    ErrorCode = "file-too-large"
	FileTooSmall    ErrorCode = "file-too-small"
	TooManyFiles    ErrorCode = "too-many-files"
)

type FileError struct {
	Code    ErrorCode
	Message string
}

func (e FileError) Error() string {
	return e.Message
}

// Rejection is a dropped file that failed at least one check.
type Rejection struct {
	File   File
	Errors []FileError
}

// Has reports whether the rejection carries the given code.
func (r Rejection) Has(code ErrorCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Options bound a drop. Zero values mean unlimited.
type Options struct {
	MaxFiles int
	MinSize  int64
	MaxSize  int64
	Disabled bool
}

// Handlers receive zone events. Any of them may be nil.
type Handlers struct {
	OnDragEnter    func()
	OnDragLeave    func()
	OnDrop         func(accepted []File, rejected []Rejection)
	OnDropAccepted func(accepted []File)
	OnDropRejected func(rejected []Rejection)
}

// Zone classifies dropped files against an accept filter and dispatches
// the outcome to its handlers.
type Zone struct {
	accept   Accept
	opts     Options
	handlers Handlers
}

func NewZone(accept Accept, opts Options, handlers Handlers) *Zone {
	return &Zone{accept: accept, opts: opts, handlers: handlers}
}

func (z *Zone) Accept() Accept { return z.accept }

func (z *Zone) Disabled() bool { return z.opts.Disabled }

func (z *Zone) SetDisabled(disabled bool) { z.opts.Disabled = disabled }

func (z *Zone) DragEnter() {
	if z.opts.Disabled || z.handlers.OnDragEnter == nil {
		return
	}
	z.handlers.OnDragEnter()
}

func (z *Zone) DragLeave() {
	if z.opts.Disabled || z.handlers.OnDragLeave == nil {
		return
	}
	z.handlers.OnDragLeave()
}

// Drop classifies files and runs the handlers. It returns the split for
// callers that want it directly. A disabled zone classifies nothing.
func (z *Zone) Drop(files []File) (accepted []File, rejected []Rejection) {
	if z.opts.Disabled {
		return nil, nil
	}

	accepted, rejected = z.Classify(files)

	if z.handlers.OnDrop != nil {
		z.handlers.OnDrop(accepted, rejected)
	}
	if len(accepted) > 0 && z.handlers.OnDropAccepted != nil {
		z.handlers.OnDropAccepted(accepted)
	}
	if len(rejected) > 0 && z.handlers.OnDropRejected != nil {
		z.handlers.OnDropRejected(rejected)
	}

	return accepted, rejected
}

// Classify splits files without running any handler.
func (z *Zone) Classify(files []File) (accepted []File, rejected []Rejection) {
	tooMany := z.opts.MaxFiles > 0 && len(files) > z.opts.MaxFiles

	for _, f := range files {
		errs := z.check(f)
		if tooMany {
			errs = append(errs, FileError{
				Code:    TooManyFiles,
				Message: fmt.Sprintf("Too many files, at most %d allowed", z.opts.MaxFiles),
			})
		}

		if len(errs) > 0 {
			rejected = append(rejected, Rejection{File: f, Errors: errs})
			continue
		}
		accepted = append(accepted, f)
	}

	return accepted, rejected
}

func (z *Zone) check(f File) []FileError {
	var errs []FileError

	if !z.accept.Allows(f) {
		errs = append(errs, FileError{
			Code:    FileInvalidType,
			Message: fmt.Sprintf("File type must be one of %s", z.accept.Hint()),
		})
	}

	if f.Size >= 0 {
		if z.opts.MinSize > 0 && f.Size < z.opts.MinSize {
			errs = append(errs, FileError{
				Code:    FileTooSmall,
				Message: fmt.Sprintf("File is smaller than %d bytes", z.opts.MinSize),
			})
		}
		if z.opts.MaxSize > 0 && f.Size > z.opts.MaxSize {
			errs = append(errs, FileError{
				Code:    FileTooLarge,
				Message: fmt.Sprintf("File is larger than %d bytes", z.opts.MaxSize),
			})
		}
	}

	return errs
}
