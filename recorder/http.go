package recorder

import (
	"context"
	"net/http"
	"time"

	"github.com/vitwit/paylink/internal/httpjson"
	"github.com/vitwit/paylink/types"
)

// IdempotencyHeader carries the attempt id on POST /transactions.
const IdempotencyHeader = "X-Idempotency-Key"

// HTTPRecorder posts records to the transactions endpoint.
type HTTPRecorder struct {
	http *httpjson.Client
}

// NewHTTPRecorder creates a recorder for the API rooted at baseURL.
func NewHTTPRecorder(baseURL string, timeout time.Duration) *HTTPRecorder {
	return &HTTPRecorder{http: httpjson.New(baseURL, timeout)}
}

// SetHeader adds a header sent with every request.
func (r *HTTPRecorder) SetHeader(key, value string) {
	r.http.Header.Set(key, value)
}

// SetHTTPClient replaces the underlying http.Client.
func (r *HTTPRecorder) SetHTTPClient(h *http.Client) {
	r.http.HTTP = h
}

func (r *HTTPRecorder) Record(ctx context.Context, key string, rec *types.TransactionRecord) error {
	header := http.Header{}
	if key != "" {
		header.Set(IdempotencyHeader, key)
	}
	if err := r.http.Do(ctx, http.MethodPost, "/transactions", rec, nil, header); err != nil {
		return types.NewError(types.ErrRecording, "record transaction", err)
	}
	return nil
}
