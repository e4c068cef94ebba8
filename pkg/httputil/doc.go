// Package httputil provides the HTTP plumbing shared by floor sources.
//
// [Retry] re-runs an operation with exponential backoff when it fails with a
// [RetryableError]. [GetJSON] performs a GET, reports the exchange to the
// observability HTTP hooks and maps status codes onto coded errors:
//
//   - 404 becomes NOT_FOUND
//   - 429 and 5xx become retryable NETWORK_ERROR
//   - other non-2xx statuses become NETWORK_ERROR and are not retried
//
// Callers combine the two:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return httputil.GetJSON(ctx, client, url, &floor)
//	})
package httputil
