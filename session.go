package atmos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v5"
)

// ErrNoToken is returned by AuthTokenWithRetry when every attempt completed
// without a subtenant being issued.
var ErrNoToken = errors.New("no subtenant issued")

// AcquireSessionToken asks the first storage node for a subtenant id for
// cred. It returns ok=false without error when the server declines or can
// not be reached, so the caller may try again later. A cancelled or expired
// ctx is returned as an error.
func (d *Driver) AcquireSessionToken(ctx context.Context, cred Credential) (token string, ok bool, err error) {
	node := d.nodes[0]
	uri := SubtenantURIBase + d.uriQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.scheme+"://"+node+uri, http.NoBody)
	if err != nil {
		return "", false, fmt.Errorf("create subtenant request: %w", err)
	}
	req.Host = node
	req.ContentLength = 0

	d.applyDynamicHeaders(req.Header)
	if d.fsAccess {
		req.Header.Set(HeaderFilesystemAccessEnabled, "true")
	}
	d.applySharedHeaders(req.Header)

	w := d.signer.workers.Get().(*Worker)
	w.signWithoutToken(req.Header, http.MethodPut, uri, cred)
	d.signer.workers.Put(w)

	resp, err := d.doer.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.metrics.subtenantResult(SubtenantCancelled)
			return "", false, fmt.Errorf("create subtenant: %w", ctxErr)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			d.metrics.subtenantResult(SubtenantCancelled)
			return "", false, fmt.Errorf("create subtenant: %w", err)
		}
		d.logger.Warn("failed to connect to the storage node", "node", node, "err", err)
		d.metrics.subtenantResult(SubtenantUnreachable)
		return "", false, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Warn("creating the subtenant: got response", "node", node, "status", resp.Status)
		d.metrics.subtenantResult(SubtenantRejected)
		return "", false, nil
	}

	token = resp.Header.Get(HeaderSubtenantID)
	if token == "" {
		d.logger.Warn("creating the subtenant: response has no subtenant id", "node", node, "status", resp.Status)
		d.metrics.subtenantResult(SubtenantMissing)
		return "", false, nil
	}

	d.metrics.subtenantResult(SubtenantIssued)
	d.logger.Debug("subtenant issued", "uid", cred.UID, "subtenant", token)
	return token, true, nil
}

// AuthToken returns the cached subtenant for cred, bootstrapping it on first
// use. ok is false when no subtenant could be obtained this time.
func (d *Driver) AuthToken(ctx context.Context, cred Credential) (token string, ok bool, err error) {
	if token, ok = d.signer.tokens.Get(cred); ok {
		return token, true, nil
	}

	token, ok, err = d.AcquireSessionToken(ctx, cred)
	if err != nil || !ok {
		return "", false, err
	}
	return d.signer.tokens.Store(cred, token), true, nil
}

// AuthTokenWithRetry repeats AuthToken with backoff until a subtenant is
// issued or maxTries attempts were made. Zero maxTries means no limit.
// Cancellation stops retrying immediately.
func (d *Driver) AuthTokenWithRetry(ctx context.Context, cred Credential, maxTries uint) (string, error) {
	op := func() (string, error) {
		token, ok, err := d.AuthToken(ctx, cred)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		if !ok {
			return "", ErrNoToken
		}
		return token, nil
	}

	retryOpts := []backoff.RetryOption{backoff.WithBackOff(d.newBackOff())}
	if maxTries > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxTries(maxTries))
	}

	token, err := backoff.Retry(ctx, op, retryOpts...)
	if err != nil {
		return "", fmt.Errorf("acquire subtenant for %s: %w", cred.UID, err)
	}
	return token, nil
}
