package collectors

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// userAgentTransport stamps a fixed User-Agent on every outbound request
// before delegating to next, so collectors identify themselves consistently
// to publisher sites that rate-limit or block unlabeled scrapers.
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

// NewHTTPClient returns a retrying HTTP client shared by the RSS and HTML
// collectors. Exponential backoff with a capped retry count absorbs the
// transient 5xx/timeout noise publisher sites routinely produce, without
// the Orchestrator's cycle deadline burning on a single flaky source.
func NewHTTPClient(userAgent string) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.Logger = nil // the teacher's services log at the call site, not inside the HTTP client

	client := rc.StandardClient()
	client.Timeout = 20 * time.Second
	client.Transport = userAgentTransport{next: client.Transport, userAgent: userAgent}

	return client
}
