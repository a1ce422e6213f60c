// Package fetch downloads supplier files (price sheets, catalogue exports)
// over HTTP or FTP ahead of import. Suppliers still commonly publish price
// lists on plain FTP drops.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Options configures downloads.
type Options struct {
	Timeout time.Duration
}

// Download fetches rawURL into destDir and returns the local path. The
// scheme picks the transport: http(s) or ftp.
func Download(ctx context.Context, rawURL, destDir string, opts Options) (string, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrap(err, "fetch: parse url")
	}

	name := filepath.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", eris.Errorf("fetch: url %q has no file name", rawURL)
	}
	dest := filepath.Join(destDir, name)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetch: create dest dir")
	}

	var body io.ReadCloser
	err = withRetry(ctx, defaultRetryConfig(), func() error {
		switch u.Scheme {
		case "http", "https":
			body, err = httpBody(ctx, rawURL, opts.Timeout)
		case "ftp":
			body, err = ftpBody(ctx, u, opts.Timeout)
		default:
			return eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create dest file")
	}
	defer f.Close()

	n, err := io.Copy(f, body)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: write %s", dest)
	}

	zap.L().Info("fetched supplier file",
		zap.String("url", rawURL),
		zap.String("dest", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}

func httpBody(ctx context.Context, rawURL string, timeout time.Duration) (io.ReadCloser, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: GET %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &statusError{url: rawURL, code: resp.StatusCode}
	}
	return resp.Body, nil
}

// statusError carries the HTTP status so the retry layer can tell server
// trouble from a plain 404.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch: GET %s returned %d", e.url, e.code)
}
