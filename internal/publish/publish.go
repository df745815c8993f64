// Package publish uploads a packaged archive to an HTTP(S) or WebDAV
// repository with a single PUT.
package publish

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// Result describes a completed upload.
type Result struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Bytes      int64  `json:"bytes"`
}

// Publisher uploads archives. It makes at most one attempt per call.
type Publisher struct {
	client    *http.Client
	userAgent string
}

// Options configure a Publisher.
type Options struct {
	Timeout time.Duration

	// Insecure skips TLS certificate verification.
	Insecure bool

	UserAgent string

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// NewPublisher creates a Publisher.
func NewPublisher(opts Options) *Publisher {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultPublishTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "universe"
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
		if opts.Insecure {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //#nosec G402 -- opt-in via publish.insecure
		}
		transport = t
	}

	return &Publisher{
		client:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}
}

// DestinationURL returns the upload URL for archive. When endpoint ends in a
// slash the archive's base name is appended.
func DestinationURL(endpoint, archive string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", uerrors.ErrNoRepository
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid repository URL", uerrors.ErrPublishFailed)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported repository scheme %q", uerrors.ErrPublishFailed, u.Scheme)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	if strings.HasSuffix(u.Path, "/") {
		u.Path = path.Join(u.Path, filepath.Base(archive))
		u.RawPath = ""
	}
	return u.String(), nil
}

// Publish uploads the archive at archivePath to endpoint.
func (p *Publisher) Publish(ctx context.Context, archivePath, endpoint string) (*Result, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "publish").Logger()

	dest, err := DestinationURL(endpoint, archivePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(archivePath) //#nosec G304 -- archive path is derived from the unit root
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", uerrors.ErrArchiveMissing, filepath.Base(archivePath))
	}
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPublishFailed, err, "open archive")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPublishFailed, err, "stat archive")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest, f)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPublishFailed, err, "create request")
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/gzip")
	req.Header.Set("User-Agent", p.userAgent)

	log.Info().Str("url", redact(req.URL)).Int64("bytes", info.Size()).Msg("uploading archive")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPublishFailed, err, "upload")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		log.Error().Int("status", resp.StatusCode).Str("body", msg).Msg("repository rejected upload")
		return nil, fmt.Errorf("%w: %s: %s", uerrors.ErrPublishFailed, resp.Status, msg)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Info().Int("status", resp.StatusCode).Msg("archive published")
	return &Result{URL: redact(req.URL), StatusCode: resp.StatusCode, Bytes: info.Size()}, nil
}

func redact(u *url.URL) string {
	return u.Redacted()
}
