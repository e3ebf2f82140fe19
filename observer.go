package url2pdf

import "time"

// Observer receives progress events. Implementations must be cheap;
// callbacks run inline on the capture loop.
type Observer interface {
	// AttemptFinished is called after every capture attempt; err is nil on success.
	AttemptFinished(url string, attempt int, elapsed time.Duration, err error)
	// CaptureFinished is called once per URL; err wraps ErrCaptureExhausted on exhaustion.
	CaptureFinished(url string, attempts int, err error)
	// PageFinished is called once per entry during assembly.
	PageFinished(url string, placeholder bool, err error)
}

type nopObserver struct{}

func (nopObserver) AttemptFinished(string, int, time.Duration, error) {}
func (nopObserver) CaptureFinished(string, int, error) {}
func (nopObserver) PageFinished(string, bool, error) {}
