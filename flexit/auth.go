package flexit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrUnauthenticated is returned by Token before the first token was issued.
var ErrUnauthenticated = errors.New("flexit: no token issued")

// Auth issues bearer tokens with the password grant. A token is requested
// at most once per calendar day and reused for the rest of that day
// regardless of its advertised expiry.
type Auth struct {
	log      *zap.SugaredLogger
	config   *oauth2.Config
	client   *http.Client
	username string
	password string
	now      func() time.Time

	mu     sync.Mutex
	token  *oauth2.Token
	issued time.Time

	requests atomic.Uint64
}

func newAuth(log *zap.SugaredLogger, baseURL string, base http.RoundTripper, opts Options) *Auth {
	return &Auth{
		log: log,
		config: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  baseURL + "/Token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client:   &http.Client{Timeout: opts.Timeout, Transport: base},
		username: opts.Username,
		password: opts.Password,
		now:      opts.Now,
	}
}

// EnsureToken requests a new token unless one was issued today.
func (a *Auth) EnsureToken(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.token != nil && sameDay(a.issued, now) {
		return nil
	}

	a.requests.Add(1)
	a.log.Debugf("Requesting token for %s", a.username)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := a.config.PasswordCredentialsToken(ctx, a.username, a.password)
	if err != nil {
		return fmt.Errorf("could not get token: %w", classify(err))
	}

	a.token = token
	a.issued = now
	a.log.Infof("Got new token for %s", a.username)

	return nil
}

// Token returns the cached token. It never performs a request.
func (a *Auth) Token() (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil {
		return nil, ErrUnauthenticated
	}
	return a.token, nil
}

// Authenticated reports whether a token was issued today.
func (a *Auth) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.token != nil && sameDay(a.issued, a.now())
}

// Requests is the number of token requests sent so far.
func (a *Auth) Requests() uint64 {
	return a.requests.Load()
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
