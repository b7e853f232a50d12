package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/h2h/internal/logger"
)

// EnvCABundle names an extra PEM bundle to trust, for corporate proxies that re-sign TLS
const EnvCABundle = "H2H_CA_BUNDLE"

// BrowserUserAgent is sent on page fetches so sites serve the same markup a browser would get
const BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var (
	httpClient *http.Client
	clientOnce sync.Once
)

// APIError is returned for any non 2xx response
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request to %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// getCABundle returns the extra CA bundle if one is configured
func getCABundle() ([]byte, error) {
	bundlePath := os.Getenv(EnvCABundle)
	if bundlePath == "" {
		bundlePath = filepath.Join(os.Getenv("HOME"), ".ssh/zscaler_ca_bundle.pem")
	}
	return os.ReadFile(bundlePath)
}

// GetCustomHTTPClient returns a shared HTTP client that also trusts the extra CA bundle
func GetCustomHTTPClient() *http.Client {
	clientOnce.Do(func() {
		rootCAs, err := x509.SystemCertPool()
		if err != nil {
			logger.Warn("Failed to get system cert pool", err)
			rootCAs = x509.NewCertPool()
		}

		if bundle, err := getCABundle(); err != nil {
			logger.Debug("Proceeding without extra CA bundle", err)
		} else if ok := rootCAs.AppendCertsFromPEM(bundle); !ok {
			logger.Warn("Failed to append CA bundle")
		} else {
			logger.Info("Added extra CA bundle to root CAs")
		}

		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: rootCAs},
				Proxy:           http.ProxyFromEnvironment,
			},
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		}
	})
	return httpClient
}

// NewHTTPClient shares the custom client's transport but gives up after timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	c := *GetCustomHTTPClient()
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &c
}

// Get performs a GET with the given headers and returns the decoded body.
// Non 2xx responses are returned as *APIError.
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	if client == nil {
		client = GetCustomHTTPClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("HTTP GET", url)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{URL: url, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// GetHtml fetches a page with browser-like headers
func GetHtml(ctx context.Context, htmlUrl string) ([]byte, error) {
	return Get(ctx, nil, htmlUrl, map[string]string{
		"User-Agent":      BrowserUserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Referer":         "http://www.google.com/",
		"Accept-Language": "en-GB,en;q=0.9",
	})
}

// decodeBody handles Content-Encoding. Go only decodes gzip transparently when it set the
// Accept-Encoding header itself, which it doesn't once we ask for br.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	default:
		logger.Warn("Unknown content encoding:", enc)
		return io.NopCloser(resp.Body), nil
	}
}
