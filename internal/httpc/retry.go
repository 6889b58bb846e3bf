package httpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Retryable reports whether a response with this status may succeed if
// sent again.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Retrier resends a request while the server answers Retryable statuses
// or the transport fails. The wait before attempt n is n*Delay.
type Retrier struct {
	Client  *http.Client
	Retries int
	Delay   time.Duration
	Logger  *slog.Logger
}

// Do sends the request produced by build until it gets a non-retryable
// answer or runs out of retries. build is called once per attempt so the
// body can be replayed. When retries run out on a retryable status, that
// last response is returned for the caller to decode.
func (r *Retrier) Do(ctx context.Context, build func(context.Context) (*http.Request, error)) (*http.Response, error) {
	client := r.Client
	if client == nil {
		client = Client
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(time.Duration(attempt) * r.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		last := attempt >= r.Retries

		switch {
		case err != nil:
			lastErr = err
			if ctx.Err() != nil || last {
				return nil, lastErr
			}
			logger.Warn("request failed, retrying", "attempt", attempt+1, "error", err)
		case Retryable(resp.StatusCode) && !last:
			resp.Body.Close()
			logger.Warn("retrying request", "attempt", attempt+1, "status", resp.StatusCode)
		default:
			return resp, nil
		}
	}
}
