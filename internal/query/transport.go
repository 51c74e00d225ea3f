package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"resty.dev/v3"

	"pos_sales/internal/metrics"
)

// ErrStatus is wrapped by TransportError when the endpoint answered with a non-2xx status.
var ErrStatus = errors.New("query endpoint returned non-success status")

// ErrDecode is wrapped by TransportError when the response body is not JSON.
var ErrDecode = errors.New("query endpoint returned malformed JSON")

// Query is a statement plus the positional values bound to its ? placeholders.
type Query struct {
	Text   string
	Params []any
}

// New builds a Query.
func New(text string, params ...any) Query {
	return Query{Text: text, Params: params}
}

// Transport sends a query to the remote service and returns its raw answer.
type Transport interface {
	Execute(ctx context.Context, q Query) (RawResult, error)
}

// TransportError reports a query that did not produce a usable response.
// StatusCode is zero when the network call itself did not complete.
type TransportError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("query transport: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("query transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Responded reports whether the endpoint answered at all.
func (e *TransportError) Responded() bool { return e.StatusCode != 0 }

type requestBody struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

// HTTPTransport posts queries to a single fixed endpoint. It never retries.
type HTTPTransport struct {
	client   *resty.Client
	endpoint string
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// NewHTTPTransport creates a transport bound to endpoint.
func NewHTTPTransport(endpoint string, timeout time.Duration, logger *zap.Logger, m *metrics.Registry) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPTransport{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
		metrics:  m,
	}
}

// Execute sends q verbatim as the request body.
func (t *HTTPTransport) Execute(ctx context.Context, q Query) (RawResult, error) {
	params := q.Params
	if params == nil {
		params = []any{}
	}
	requestID := uuid.NewString()
	start := time.Now()

	res, err := t.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetBody(requestBody{Query: q.Text, Params: params}).
		Post(t.endpoint)
	elapsed := time.Since(start)
	if err != nil {
		t.metrics.ObserveQuery(metrics.OutcomeNetError, elapsed)
		t.logger.Warn("query request failed",
			zap.String("request_id", requestID),
			zap.String("query", q.Text),
			zap.Error(err))
		return RawResult{}, &TransportError{Query: q.Text, Err: err}
	}

	status := res.StatusCode()
	if status < 200 || status > 299 {
		t.metrics.ObserveQuery(metrics.OutcomeStatusError, elapsed)
		t.logger.Warn("query endpoint rejected request",
			zap.String("request_id", requestID),
			zap.String("query", q.Text),
			zap.Int("status", status))
		return RawResult{}, &TransportError{Query: q.Text, StatusCode: status, Err: ErrStatus}
	}

	raw, err := DecodeRaw([]byte(res.String()))
	if err != nil {
		t.metrics.ObserveQuery(metrics.OutcomeDecodeError, elapsed)
		t.logger.Warn("query response is not JSON",
			zap.String("request_id", requestID),
			zap.String("query", q.Text),
			zap.Error(err))
		return RawResult{}, &TransportError{Query: q.Text, StatusCode: status, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}

	t.metrics.ObserveQuery(metrics.OutcomeOK, elapsed)
	t.logger.Debug("query executed",
		zap.String("request_id", requestID),
		zap.String("query", q.Text),
		zap.Duration("elapsed", elapsed),
		zap.String("shape", Classify(raw).String()))
	return raw, nil
}

// Close releases the underlying HTTP client.
func (t *HTTPTransport) Close() error {
	return t.client.Close()
}
