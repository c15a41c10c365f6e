package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Do performs a request against the aggregator with the retry policy
	// applied. params are merged into the query string and the API credential
	// is attached when absent. Returns the response body as bytes.
	Do(ctx context.Context, method, url string, params map[string]string, body []byte, label string) ([]byte, error)
}
