package util

import "net/http"

// Remote opens are single-attempt blocking calls with no client-side timeout;
// callers embedding this in a long-lived service wrap them externally.
var httpClient = &http.Client{}

// HTTPClient returns the shared HTTP client used for remote sources
func HTTPClient() *http.Client {
	return httpClient
}
