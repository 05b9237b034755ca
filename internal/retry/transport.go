package retry

import (
	"io"
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// Transport retries requests whose body can be replayed. Requests with a
// body but without GetBody are sent once.
type Transport struct {
	Base          http.RoundTripper
	RetryStrategy Strategy
	RetryOn       *On
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()
	for retry := uint(0); ; retry++ {
		attempt := request
		if retry > 0 {
			var err error
			if attempt, err = rewind(request); err != nil {
				return nil, err
			}
		}

		response, err := t.base().RoundTrip(attempt)
		if !t.shouldRetry(request, response, err) {
			return response, err
		}
		wait, exhausted := t.strategy().Backoff(retry)
		if exhausted {
			return response, err
		}
		if response != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			response.Body.Close()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *Transport) shouldRetry(request *http.Request, response *http.Response, err error) bool {
	if t.RetryOn == nil {
		return false
	}
	if request.Body != nil && request.Body != http.NoBody && request.GetBody == nil {
		return false
	}
	if err != nil {
		return request.Context().Err() == nil && t.RetryOn.CheckError(err)
	}
	return t.RetryOn.CheckResponse(response)
}

func rewind(request *http.Request) (*http.Request, error) {
	if request.GetBody == nil {
		return request, nil
	}
	body, err := request.GetBody()
	if err != nil {
		return nil, xerrors.Errorf("failed to rewind request body: %w", err)
	}
	clone := request.Clone(request.Context())
	clone.Body = body
	return clone, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) strategy() Strategy {
	if t.RetryStrategy != nil {
		return t.RetryStrategy
	}
	return NewNever()
}

// NewClient returns an http.Client retrying with the default conditions.
// timeout bounds the whole call including retries.
func NewClient(timeout time.Duration, strategy Strategy) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Base:          http.DefaultTransport,
			RetryStrategy: strategy,
			RetryOn:       NewDefaultRetryOn(),
		},
	}
}
