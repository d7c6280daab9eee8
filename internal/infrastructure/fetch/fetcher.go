// Package fetch resolves a document URL to plain text. Outbound
// requests go through an SSRF-guarded HTTP client; the HTML is reduced
// to readable text before it reaches the summarization prompt.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/doyensec/safeurl"

	"github.com/kirillkom/linkstash/internal/core/domain"
	"github.com/kirillkom/linkstash/internal/infrastructure/resilience"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 5 << 20
	userAgent           = "linkstash/1.0 (+https://github.com/kirillkom/linkstash)"
)

type Fetcher struct {
	httpClient   *http.Client
	maxBodyBytes int64
	executor     *resilience.Executor
}

type Options struct {
	Timeout            time.Duration
	MaxBodyBytes       int64
	ResilienceExecutor *resilience.Executor
}

// New builds a fetcher over an SSRF-guarded client: private, loopback,
// link-local and metadata addresses are rejected at dial time, so DNS
// rebinding cannot bypass the URL pre-check.
func New(options Options) *Fetcher {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	wrapped := safeurl.Client(config)

	return NewWithClient(wrapped.Client, options)
}

// NewWithClient accepts a caller-supplied HTTP client; tests use it to
// reach local fixtures the safe client would refuse.
func NewWithClient(httpClient *http.Client, options Options) *Fetcher {
	maxBodyBytes := options.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Fetcher{
		httpClient:   httpClient,
		maxBodyBytes: maxBodyBytes,
		executor:     options.ResilienceExecutor,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate url", err)
	}

	var text string
	call := func(callCtx context.Context) error {
		out, err := f.fetchOnce(callCtx, rawURL)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	var err error
	if f.executor != nil {
		err = f.executor.Execute(ctx, "fetch.content", call, classifyFetchError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: rawURL}
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read response body: %w", err)
		}
		return string(data), nil
	}

	return extractText(body)
}

// extractText strips non-content nodes and flattens the document into
// whitespace-normalized plain text.
func extractText(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return strings.Join(strings.Fields(root.Text()), " "), nil
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("empty url")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("disallowed scheme: %s", scheme)
	}
	if parsed.Hostname() == "" {
		return errors.New("empty host")
	}
	return nil
}

type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s status: %s", e.URL, e.Status)
}

func classifyFetchError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		retryable := statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
		return resilience.ErrorClassification{Retryable: retryable, RecordFailure: retryable}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
