package transport

import (
	"io"
	"math"
	"sync/atomic"
)

// Progress reports how much of the request body has been sent.
// Total is 0 when the body length is not known up front.
type Progress struct {
	Loaded int64
	Total  int64
}

func (p Progress) Percent() int {
	return Percent(p.Loaded, p.Total)
}

// Percent computes round(loaded*100/total), or 0 when total is not positive.
// The result is not clamped.
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(loaded) * 100 / float64(total)))
}

type ProgressFunc func(Progress)

type progressReader struct {
	r      io.ReadCloser
	total  int64
	loaded atomic.Int64
	fn     ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 && pr.fn != nil {
		loaded := pr.loaded.Add(int64(n))
		pr.fn(Progress{Loaded: loaded, Total: pr.total})
	}
	return n, err
}

func (pr *progressReader) Close() error {
	return pr.r.Close()
}
