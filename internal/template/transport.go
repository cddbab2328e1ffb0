package template

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// NewHTTPClient returns a client for archive downloads. A non-empty proxyURL
// routes every request through that proxy. Otherwise HTTPS_PROXY, HTTP_PROXY
// and NO_PROXY are read when the client is created; a proxy value without a
// scheme is taken as http.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: missing host", proxyURL)
		}
		transport.Proxy = http.ProxyURL(u)
	} else {
		proxyFunc := httpproxy.FromEnvironment().ProxyFunc()
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		}
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
