package flexit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const userAgent = "Flexit%20GO/2.0.6 CFNetwork/1128.0.1 Darwin/19.6.0"

// vendorHeader returns the headers sent with every request.
func vendorHeader(subscriptionKey string) http.Header {
	return http.Header{
		"Accept":                    {"application/json"},
		"Accept-Language":           {"en-us"},
		"Content-Type":              {"application/json; charset=utf-8"},
		"User-Agent":                {userAgent},
		"Ocp-Apim-Subscription-Key": {subscriptionKey},
	}
}

// headerTransport adds the vendor headers a request does not set itself.
type headerTransport struct {
	header http.Header
	base   http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, values := range t.header {
		if req.Header.Get(key) == "" {
			req.Header[key] = values
		}
	}
	return t.base.RoundTrip(req)
}

type transport struct {
	log     *zap.SugaredLogger
	baseURL string
	client  *http.Client
}

func newTransport(log *zap.SugaredLogger, baseURL string, base http.RoundTripper, source oauth2.TokenSource, opts Options) *transport {
	return &transport{
		log:     log,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &oauth2.Transport{
				Source: source,
				Base:   base,
			},
		},
	}
}

func (t *transport) plantsURL() string {
	return t.baseURL + "/Plants"
}

func (t *transport) filterURL(paths []string) string {
	type filter struct {
		DataPoints string
	}

	filters := make([]filter, 0, len(paths))
	for _, path := range paths {
		filters = append(filters, filter{DataPoints: path})
	}
	b, _ := json.Marshal(filters)

	return t.baseURL + "/DataPoints/Values?filterId=" + url.QueryEscape(string(b))
}

func (t *transport) dataPointURL(path string) string {
	return t.baseURL + "/DataPoints/" + url.PathEscape(path)
}

func (t *transport) get(ctx context.Context, uri string) ([]byte, error) {
	return t.do(ctx, http.MethodGet, uri, "")
}

// put writes value to the data point. The vendor expects the value as a
// JSON string whatever its type.
func (t *transport) put(ctx context.Context, path string, value string) ([]byte, error) {
	return t.do(ctx, http.MethodPut, t.dataPointURL(path), `{"Value": "`+value+`"}`)
}

func (t *transport) do(ctx context.Context, method, uri, body string) ([]byte, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	t.log.Debugf("%s-request to url=%s. data=%s", method, uri, body)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: method, URL: uri, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		return nil, protocolError("unexpected content type %q from %s: %s", ct, uri, b)
	}

	return b, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// classify maps transport level errors onto the package error kinds.
func classify(err error) error {
	if errors.Is(err, ErrConnection) || errors.Is(err, ErrProtocol) || errors.Is(err, ErrUnauthenticated) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		statusErr := &StatusError{Method: http.MethodPost, Body: string(retrieveErr.Body)}
		if retrieveErr.Response != nil {
			statusErr.StatusCode = retrieveErr.Response.StatusCode
			if retrieveErr.Response.Request != nil {
				statusErr.URL = retrieveErr.Response.Request.URL.String()
			}
		}
		return statusErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w: %v", ErrConnection, ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return fmt.Errorf("%w: %w", ErrProtocol, err)
}

// formatValue renders value the way the vendor app does: floats always
// carry a decimal point.
func formatValue(value any) string {
	switch v := value.(type) {
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return cast.ToString(v)
	}
}
