package downstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/middleware"
)

type ClientConfig struct {
	// ReadTimeout applies to GET and HEAD.
	ReadTimeout time.Duration
	// WriteTimeout applies to POST, PUT, PATCH and DELETE.
	WriteTimeout time.Duration
	// Transport overrides the base round tripper; tests point it at httptest.
	Transport http.RoundTripper
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client wraps http.Client for calls to the user-management API. It
// propagates the request id and trace context, applies a timeout chosen by
// method, records metrics and maps transport failures to ErrTimeout or
// ErrUnavailable.
type Client struct {
	http   *http.Client
	config ClientConfig
}

func NewClient(config ClientConfig) *Client {
	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 {
		def := DefaultClientConfig()
		if config.ReadTimeout <= 0 {
			config.ReadTimeout = def.ReadTimeout
		}
		if config.WriteTimeout <= 0 {
			config.WriteTimeout = def.WriteTimeout
		}
	}
	return &Client{
		http:   &http.Client{Transport: &middleware.TracingTransport{Base: config.Transport}},
		config: config,
	}
}

// Do sends req. The caller owns the response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		req.Header.Set(middleware.HeaderXRequestID, reqID)
	}

	timeout := c.config.ReadTimeout
	if isWriteMethod(req.Method) {
		timeout = c.config.WriteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	req = req.WithContext(ctx)

	log := logger.Ctx(ctx).With().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		cancel()
		mapped := mapError(err)
		middleware.ObserveUpstream(req.Method, mapped.Error(), elapsed)
		log.Warn().Err(err).Dur("duration", elapsed).Msg("upstream_request_failed")
		return nil, mapped
	}

	middleware.ObserveUpstream(req.Method, strconv.Itoa(resp.StatusCode), elapsed)
	log.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("upstream_request_completed")

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	return ErrUnavailable
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// cancelOnClose releases the per-request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
