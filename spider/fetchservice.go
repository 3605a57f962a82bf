package spider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/dreamerjackson/listcrawler/proxy"
	"github.com/dreamerjackson/listcrawler/version"
	"github.com/juju/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Page is a successfully fetched document, decoded to UTF-8.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

type Fetcher interface {
	Get(ctx context.Context, req *Request) (*Page, error)
}

type FetchErrorKind int

const (
	NetworkError FetchErrorKind = iota + 1
	HTTPStatusError
	DecodeError
)

func (k FetchErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case HTTPStatusError:
		return "http status error"
	case DecodeError:
		return "decode error"
	default:
		return "unknown fetch error"
	}
}

type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == HTTPStatusError {
		return fmt.Sprintf("fetch %s: error status code:%d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is a FetchError of the given kind.
func IsFetchError(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

const DefaultTimeout = 10 * time.Second

type fetchOptions struct {
	userAgent string
	timeout   time.Duration
	proxy     proxy.Func
	bandwidth int64
	logger    *zap.Logger
}

var defaultFetchOptions = fetchOptions{
	timeout: DefaultTimeout,
	logger:  zap.NewNop(),
}

type FetchOption func(opts *fetchOptions)

func WithUserAgent(userAgent string) FetchOption {
	return func(opts *fetchOptions) {
		opts.userAgent = userAgent
	}
}

// WithTimeout bounds every request. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) FetchOption {
	return func(opts *fetchOptions) {
		if timeout > 0 {
			opts.timeout = timeout
		}
	}
}

func WithProxy(p proxy.Func) FetchOption {
	return func(opts *fetchOptions) {
		opts.proxy = p
	}
}

// WithBandwidth caps body download speed in bytes per second, 0 means no cap.
func WithBandwidth(bytesPerSecond int64) FetchOption {
	return func(opts *fetchOptions) {
		opts.bandwidth = bytesPerSecond
	}
}

func WithFetchLogger(logger *zap.Logger) FetchOption {
	return func(opts *fetchOptions) {
		opts.logger = logger
	}
}

type httpFetch struct {
	client *http.Client
	bucket *ratelimit.Bucket
	fetchOptions
}

func NewFetchService(opts ...FetchOption) Fetcher {
	options := defaultFetchOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.userAgent == "" {
		options.userAgent = version.UserAgent()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if options.proxy != nil {
		transport.Proxy = options.proxy
	}

	f := &httpFetch{
		client: &http.Client{
			Timeout:   options.timeout,
			Transport: transport,
		},
		fetchOptions: options,
	}
	if options.bandwidth > 0 {
		f.bucket = ratelimit.NewBucketWithRate(float64(options.bandwidth), options.bandwidth)
	}

	return f
}

func (f *httpFetch) Get(ctx context.Context, request *Request) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, request.URL, nil)
	if err != nil {
		return nil, &FetchError{Kind: NetworkError, URL: request.URL, Err: fmt.Errorf("get url failed:%w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: NetworkError, URL: request.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Kind: HTTPStatusError, URL: request.URL, StatusCode: resp.StatusCode}
	}

	var bodyReader io.Reader = resp.Body
	if f.bucket != nil {
		bodyReader = ratelimit.Reader(bodyReader, f.bucket)
	}

	raw, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, &FetchError{Kind: NetworkError, URL: request.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := DecodeUTF8(raw, contentType)
	if err != nil {
		return nil, &FetchError{Kind: DecodeError, URL: request.URL, StatusCode: resp.StatusCode, Err: err}
	}

	finalURL := request.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("fetched",
		zap.String("url", request.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("latency", time.Since(start)),
	)

	return &Page{
		URL:         request.URL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// DetermineEncoding sniffs the body encoding from BOM, Content-Type and
// meta tags.
func DetermineEncoding(raw []byte, contentType string) (encoding.Encoding, string) {
	e, name, _ := charset.DetermineEncoding(raw, contentType)

	return e, name
}

// DecodeUTF8 converts raw into UTF-8. Bodies that claim or sniff as UTF-8
// must be valid UTF-8.
func DecodeUTF8(raw []byte, contentType string) ([]byte, error) {
	e, name := DetermineEncoding(raw, contentType)
	if name == "utf-8" {
		if !utf8.Valid(raw) {
			return nil, errors.New("body is not valid utf-8")
		}
		return raw, nil
	}

	out, _, err := transform.Bytes(e.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return out, nil
}
