package clientcli

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sagarc03/atmos"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is how many subtenant requests are made before giving up.
	DefaultRetries = 5
)

// Client performs operations against an Atmos endpoint.
type Client struct {
	config     *Config
	httpClient *http.Client
	driver     *atmos.Driver
	retries    uint
	logger     *slog.Logger
	metrics    *atmos.Metrics
	now        func() time.Time
	next       atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets how many subtenant requests are made before giving up.
// Zero retries until the context ends.
func WithRetries(n uint) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithLogger sets the logger passed to the driver.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the driver metrics.
func WithMetrics(m *atmos.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock overrides the clock used for Date headers.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	drv, err := atmos.New(atmos.Config{
		Nodes:      cfg.Nodes,
		Scheme:     cfg.Scheme,
		Namespace:  cfg.Namespace,
		FSAccess:   cfg.FSAccess,
		Credential: cfg.Credential(),
		Token:      cfg.Token,
	},
		atmos.WithDoer(c.httpClient),
		atmos.WithLogger(c.logger),
		atmos.WithMetrics(c.metrics),
		atmos.WithClock(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	c.driver = drv

	return c, nil
}

// Driver returns the underlying request driver.
func (c *Client) Driver() *atmos.Driver {
	return c.driver
}

// Subtenant returns the subtenant of the configured uid, requesting one from
// the first node when none is known yet.
func (c *Client) Subtenant(ctx context.Context) (*SubtenantResult, error) {
	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, err
	}

	cred := c.config.Credential()
	token, err := c.driver.AuthTokenWithRetry(ctx, cred, c.retries)
	if err != nil {
		return nil, err
	}
	return &SubtenantResult{UID: cred.UID, Subtenant: token}, nil
}

// SubtenantInfo checks that subtenant id exists and belongs to the
// configured uid.
func (c *Client) SubtenantInfo(ctx context.Context, id string) (*SubtenantResult, error) {
	resp, err := c.doSubtenant(ctx, atmos.OpRead, id)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp)
	}
	return &SubtenantResult{UID: c.config.UID, Subtenant: resp.Header.Get(atmos.HeaderSubtenantID)}, nil
}

// DeleteSubtenant removes subtenant id.
func (c *Client) DeleteSubtenant(ctx context.Context, id string) error {
	resp, err := c.doSubtenant(ctx, atmos.OpDelete, id)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return parseServerError(resp)
	}
	return nil
}

func (c *Client) doSubtenant(ctx context.Context, op atmos.OpType, id string) (*http.Response, error) {
	if id == "" {
		return nil, fmt.Errorf("subtenant %s: %w", op, ErrEmptyPath)
	}
	if _, err := c.Subtenant(ctx); err != nil {
		return nil, err
	}

	method, uri, err := c.driver.ResolveTokenRequest(op, atmos.Item{Name: id})
	if err != nil {
		return nil, err
	}

	node := c.driver.Nodes()[0]
	req, err := http.NewRequestWithContext(ctx, method, c.config.Scheme+"://"+node+uri, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Host = node
	req.Header.Set("Date", c.now().UTC().Format(http.TimeFormat))
	for k, v := range c.driver.Signer().SharedHeaders() {
		req.Header[k] = v
	}
	c.driver.SignRequest(req, nil)

	resp, err := c.driver.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// Canonical returns the canonical string and signature of the request that
// would perform opts. The request is not sent and no subtenant is requested;
// a cached or configured token is used when present.
func (c *Client) Canonical(ctx context.Context, opts CanonicalOptions) (*CanonicalResult, error) {
	opType, err := atmos.ParseOpType(opts.Op)
	if err != nil {
		return nil, err
	}

	op := c.operation(opType, opts.RemotePath)
	req, err := c.driver.NewRequest(ctx, c.node(), op, nil, 0)
	if err != nil {
		return nil, err
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	c.driver.SignRequest(req, nil)

	return &CanonicalResult{
		Method:    req.Method,
		Path:      req.URL.Path,
		UID:       req.Header.Get(atmos.HeaderUID),
		Canonical: c.driver.Signer().Canonical(req.Header, req.Method, req.URL.Path),
		Signature: req.Header.Get(atmos.HeaderSignature),
	}, nil
}

// Upload stores a local file. With filesystem access the object is created
// at opts.RemotePath; otherwise the server assigns an id.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if (c.config.FSAccess || opts.Overwrite) && opts.RemotePath == "" {
		return nil, fmt.Errorf("upload: remote %w", ErrEmptyPath)
	}
	if _, err := c.Subtenant(ctx); err != nil {
		return nil, err
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(opts.LocalPath)
	}

	opType := atmos.OpCreate
	if opts.Overwrite {
		opType = atmos.OpUpdate
	}

	node := c.node()
	req, err := c.driver.NewRequest(ctx, node, c.operation(opType, opts.RemotePath), file, info.Size())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	c.driver.SignRequest(req, nil)

	resp, err := c.driver.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, parseServerError(resp)
	}

	result := &UploadResult{
		LocalPath:   opts.LocalPath,
		ContentType: contentType,
		Size:        info.Size(),
		Node:        node,
	}
	if c.config.FSAccess {
		result.RemotePath = normalizePath(opts.RemotePath)
	}
	if id, ok := atmos.ObjectIDFromLocation(resp); ok {
		result.ObjectID = id
	} else if opts.Overwrite && !c.config.FSAccess {
		result.ObjectID = strings.TrimPrefix(opts.RemotePath, "/")
	}
	return result, nil
}

// Download downloads an object.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.RemotePath == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	resp, err := c.do(ctx, atmos.OpRead, opts.RemotePath)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer drain(resp)
		return nil, nil, parseServerError(resp)
	}

	result := &DownloadResult{
		RemotePath:  strings.TrimPrefix(opts.RemotePath, "/"),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(normalizePath(opts.RemotePath))
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			drain(resp)
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		drain(resp)
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	drain(resp)
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Stat returns object metadata with a HEAD request.
func (c *Client) Stat(ctx context.Context, remotePath string) (*StatResult, error) {
	if remotePath == "" {
		return nil, fmt.Errorf("stat: %w", ErrEmptyPath)
	}

	resp, err := c.do(ctx, atmos.OpNoop, remotePath)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp)
	}

	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return &StatResult{
		RemotePath:  strings.TrimPrefix(remotePath, "/"),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        size,
	}, nil
}

// Delete deletes one or more objects.
// Continues on error, collecting results for all paths.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}

	results := make([]DeleteResult, 0, len(opts.Paths))

	for _, p := range opts.Paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.deleteSingle(ctx, p))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, remotePath string) DeleteResult {
	resp, err := c.do(ctx, atmos.OpDelete, remotePath)
	if err != nil {
		return DeleteResult{Path: remotePath, Err: err}
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return DeleteResult{Path: remotePath, Deleted: true}
	}

	return DeleteResult{Path: remotePath, Err: parseServerError(resp)}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// do sends a body-less data request for remotePath.
func (c *Client) do(ctx context.Context, op atmos.OpType, remotePath string) (*http.Response, error) {
	if _, err := c.Subtenant(ctx); err != nil {
		return nil, err
	}

	req, err := c.driver.BuildRequest(ctx, c.node(), c.operation(op, remotePath), nil, 0)
	if err != nil {
		return nil, err
	}

	resp, err := c.driver.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// node picks storage nodes round robin.
func (c *Client) node() string {
	nodes := c.config.Nodes
	return nodes[(c.next.Add(1)-1)%uint64(len(nodes))]
}

// operation addresses remotePath: a namespace path with filesystem access,
// an object id otherwise.
func (c *Client) operation(op atmos.OpType, remotePath string) atmos.Operation {
	remotePath = normalizePath(remotePath)
	if !c.config.FSAccess {
		return atmos.Operation{Type: op, Item: atmos.Item{Name: strings.TrimPrefix(remotePath, "/")}}
	}
	dir, name := path.Split(remotePath)
	return atmos.Operation{Type: op, Item: atmos.Item{Name: name}, DstPath: dir}
}

// normalizePath ensures path has leading slash and no trailing slash.
func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

// detectContentType returns MIME type based on file extension.
func detectContentType(p string) string {
	ext := filepath.Ext(p)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// errorBody is the XML error document Atmos returns.
type errorBody struct {
	Code    int    `xml:"Code"`
	Message string `xml:"Message"`
}

// parseServerError extracts the Atmos error code and message from resp.
func parseServerError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := xml.Unmarshal(body, &eb); err == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	// Code is the Atmos error code, zero when the body carried none.
	Code    int
	Message string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode)
	if e.Code != 0 {
		msg += " (code " + strconv.Itoa(e.Code) + ")"
	}
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden is returned when Atmos rejects the uid or signature (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
