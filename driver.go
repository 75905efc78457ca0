package atmos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Doer executes a single HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds driver settings.
type Config struct {
	// Nodes are storage node addresses (host:port). Bootstrap requests go to
	// the first one.
	Nodes []string
	// Scheme is http or https. Empty means http.
	Scheme    string
	Namespace string
	// FSAccess addresses objects by namespace path.
	FSAccess bool
	// URIQuery is appended to the subtenant bootstrap URI.
	URIQuery string
	// Headers are custom headers applied to every request.
	Headers map[string]string
	// Credential is the default credential.
	Credential Credential
	// Token is a subtenant id already issued for Credential.
	Token string
}

// Option configures a Driver.
type Option func(*options)

type options struct {
	doer       Doer
	logger     *slog.Logger
	metrics    *Metrics
	tokens     *TokenCache
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

// WithDoer sets the transport used for bootstrap and data requests.
func WithDoer(doer Doer) Option {
	return func(o *options) {
		o.doer = doer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTokenCache shares a token cache between drivers.
func WithTokenCache(tokens *TokenCache) Option {
	return func(o *options) {
		o.tokens = tokens
	}
}

// WithBackOff sets the policy AuthTokenWithRetry waits by.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(o *options) {
		o.newBackOff = newBackOff
	}
}

// WithClock overrides the clock used for Date headers.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Driver builds and authenticates requests for an Atmos endpoint.
// It is safe for concurrent use.
type Driver struct {
	nodes      []string
	scheme     string
	fsAccess   bool
	uriQuery   string
	resolver   Resolver
	signer     *Signer
	doer       Doer
	logger     *slog.Logger
	metrics    *Metrics
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

// New creates a Driver.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if len(cfg.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	scheme := strings.ToLower(cfg.Scheme)
	switch scheme {
	case "":
		scheme = "http"
	case "http", "https":
	default:
		return nil, fmt.Errorf("invalid scheme: %s: %w", cfg.Scheme, ErrInvalidInput)
	}

	o := options{
		doer:   http.DefaultClient,
		logger: slog.Default(),
		tokens: NewTokenCache(),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	shared := http.Header{}
	for k, v := range cfg.Headers {
		shared.Set(k, v)
	}
	if cfg.Namespace != "" {
		shared.Set(HeaderNamespace, cfg.Namespace)
	}

	if cfg.Token != "" && !cfg.Credential.IsZero() {
		o.tokens.Store(cfg.Credential, cfg.Token)
	}

	uriQuery := cfg.URIQuery
	if uriQuery != "" && !strings.HasPrefix(uriQuery, "?") {
		uriQuery = "?" + uriQuery
	}

	return &Driver{
		nodes:    append([]string(nil), cfg.Nodes...),
		scheme:   scheme,
		fsAccess: cfg.FSAccess,
		uriQuery: uriQuery,
		resolver: NewResolver(cfg.FSAccess),
		signer: NewSigner(SignerConfig{
			SharedHeaders: shared,
			Credential:    cfg.Credential,
			Tokens:        o.tokens,
			Logger:        o.logger,
			Metrics:       o.metrics,
		}),
		doer:       o.doer,
		logger:     o.logger,
		metrics:    o.metrics,
		newBackOff: o.newBackOff,
		now:        o.now,
	}, nil
}

// Nodes returns the configured storage node addresses.
func (d *Driver) Nodes() []string {
	return append([]string(nil), d.nodes...)
}

// Resolver returns the path and method resolver.
func (d *Driver) Resolver() Resolver {
	return d.resolver
}

// Signer returns the request signer.
func (d *Driver) Signer() *Signer {
	return d.signer
}

// NewWorker returns a signing worker for a goroutine that signs many requests.
func (d *Driver) NewWorker() *Worker {
	return d.signer.NewWorker()
}

// ResolveDataRequest returns the method and URI path of a data request.
func (d *Driver) ResolveDataRequest(op Operation) (method, path string, err error) {
	method, err = d.resolver.DataMethod(op.Type)
	if err != nil {
		return "", "", err
	}
	return method, d.resolver.DataPath(op.Type, op.Item, op.SrcPath, op.DstPath), nil
}

// ResolveTokenRequest returns the method and URI path of a subtenant request.
func (d *Driver) ResolveTokenRequest(op OpType, item Item) (method, path string, err error) {
	method, err = d.resolver.TokenMethod(op)
	if err != nil {
		return "", "", err
	}
	return method, d.resolver.TokenPath(op, item), nil
}

// ResolvePathRequest always fails: Atmos has no plain path requests.
func (d *Driver) ResolvePathRequest(op Operation) (method, path string, err error) {
	if _, err = d.resolver.PathMethod(op.Type); err != nil {
		return "", "", err
	}
	path, err = d.resolver.PathPath(op.Type, op.Item, op.SrcPath, op.DstPath)
	return "", path, err
}

// Sign sets the auth headers of a request in place. cred overrides the
// default credential when not nil.
func (d *Driver) Sign(headers http.Header, method, path string, cred *Credential) {
	d.signer.Sign(headers, method, path, cred)
}

// BuildRequest creates a signed data request for op against node. size is
// the body length; body may be nil for requests without payload.
func (d *Driver) BuildRequest(ctx context.Context, node string, op Operation, body io.Reader, size int64) (*http.Request, error) {
	req, err := d.NewRequest(ctx, node, op, body, size)
	if err != nil {
		return nil, err
	}
	d.SignRequest(req, op.Credential)
	return req, nil
}

// NewRequest creates the data request for op without auth headers. Callers
// that add canonical headers such as Content-Type or Range do so before
// SignRequest.
func (d *Driver) NewRequest(ctx context.Context, node string, op Operation, body io.Reader, size int64) (*http.Request, error) {
	method, path, err := d.ResolveDataRequest(op)
	if err != nil {
		return nil, err
	}

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, d.scheme+"://"+node+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Host = node
	req.ContentLength = size

	// The filesystem access header belongs to the subtenant request only.
	d.applyDynamicHeaders(req.Header)
	d.applySharedHeaders(req.Header)
	d.ApplyMetadataHeaders(req.Header)

	return req, nil
}

// SignRequest sets the auth headers of req, signing its method and URI path.
func (d *Driver) SignRequest(req *http.Request, cred *Credential) {
	d.signer.Sign(req.Header, req.Method, req.URL.Path, cred)
}

// Do executes req with the configured transport.
func (d *Driver) Do(req *http.Request) (*http.Response, error) {
	return d.doer.Do(req)
}

// List is not provided by this driver and returns no items.
func (d *Driver) List(_ context.Context, _, _ string, _ int) ([]Item, error) {
	return nil, nil
}

// ApplyCopyHeaders is a no-op: copy requests carry no Atmos specific headers.
func (d *Driver) ApplyCopyHeaders(_ http.Header, _ string) error {
	return nil
}

// ApplyMetadataHeaders is a no-op: user metadata is not sent.
func (d *Driver) ApplyMetadataHeaders(_ http.Header) {}

func (d *Driver) String() string {
	return "atmos"
}

func (d *Driver) applyDynamicHeaders(h http.Header) {
	h.Set("Date", d.now().UTC().Format(http.TimeFormat))
}

// applySharedHeaders copies shared headers the request does not set itself.
func (d *Driver) applySharedHeaders(h http.Header) {
	for k, v := range d.signer.shared {
		if _, ok := h[k]; ok {
			continue
		}
		h[k] = append([]string(nil), v...)
	}
}
