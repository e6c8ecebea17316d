// Package fetch downloads release assets over HTTP. Downloads land in a
// temporary file next to the destination and are renamed into place only
// when complete, so an interrupted download never leaves a partial file at
// the final path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Error reports a failed download. It is transient: callers may retry, but
// this package never retries on its own so the retry policy stays explicit
// and observable at the call site.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultClient is used by Download when no client is supplied.
var DefaultClient = &http.Client{
	Timeout: 5 * time.Minute,
}

// Download fetches url into destPath. Cancelling the context aborts the
// transfer mid-flight.
func Download(ctx context.Context, url, destPath string) error {
	return DownloadWithClient(ctx, DefaultClient, url, destPath)
}

// DownloadWithClient fetches url into destPath using the given client.
func DownloadWithClient(ctx context.Context, client *http.Client, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{URL: url, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	if written == 0 {
		return &Error{URL: url, Err: fmt.Errorf("no content downloaded")}
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrap(err, "failed to move downloaded file")
	}
	return nil
}
