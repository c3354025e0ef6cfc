package ledger

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerwatch/log/v3"
)

// NewRetryClient builds the HTTP client shared by the fullnode, replay and
// compile service clients. Connection errors and 5xx responses are retried.
func NewRetryClient(retries int, timeout time.Duration, logger log.Logger) *retryablehttp.Client {
	if logger == nil {
		logger = log.Root()
	}
	c := retryablehttp.NewClient()
	c.RetryMax = retries
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient = &http.Client{Timeout: timeout}
	c.Logger = logger
	// hand the last response back so callers can report its status
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}
