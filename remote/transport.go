package remote

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that applies the retry policy to
// every outbound call, transparently to callers. Transient failures
// (network errors, 429, 5xx) are retried with exponential backoff between
// the policy's base and max delays; everything else passes through.
type Transport struct {
	base       http.RoundTripper
	policy     Policy
	credential string
	logger     *slog.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport wraps base with the retry policy. A non-empty credential
// is attached to every request as a bearer token.
func NewTransport(policy Policy, credential string, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		base:       base,
		policy:     policy,
		credential: credential,
		logger:     slog.Default().With("component", "remote-transport"),
	}
}

// retryable reports whether the response status warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// RoundTrip executes the request, retrying per the policy. Requests with
// a body are only retried when the body can be replayed via GetBody.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var resp *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if t.credential != "" {
			attemptReq.Header.Set("Authorization", "Bearer "+t.credential)
		}
		if attempt > 0 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			attemptReq.Body = body
		}

		resp, err = t.base.RoundTrip(attemptReq)
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries: hand back the last outcome so the caller
		// can inspect it.
		if attempt >= t.policy.MaxRetries {
			return resp, err
		}

		// A body that cannot be replayed ends the retrying here, before
		// the response is drained, so the caller can still read it.
		if req.Body != nil && req.GetBody == nil {
			return resp, err
		}

		if resp != nil {
			// Drain and close the failed response before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		delay := t.policy.Delay(attempt + 1)
		t.logger.Debug("retrying request",
			"url", req.URL.String(),
			"attempt", attempt+1,
			"maxRetries", t.policy.MaxRetries,
			"delay", delay,
			"err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
