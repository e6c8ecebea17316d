// Package registry fetches tool metadata from the frate registry: a
// read-only JSON endpoint publishing, per tool, the available versions and
// the downloadable asset for each supported platform.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// DefaultURL is the upstream registry index.
const DefaultURL = "https://raw.githubusercontent.com/konni332/frate-registry/refs/heads/master/index.json"

// EnvURL names the environment variable that overrides the registry URL.
const EnvURL = "FRATE_REGISTRY"

// ToolRecord is one tool as published by the registry. Unknown fields in
// the JSON are ignored so newer registries keep working with older clients.
type ToolRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Versions    []Release `json:"versions"`
}

// Release is one published version of a tool.
type Release struct {
	Version string  `json:"version"`
	Assets  []Asset `json:"platform_assets"`
}

// Asset is a platform-specific downloadable archive.
type Asset struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Checksum string `json:"checksum"`
}

// VersionStrings returns the published version strings in registry order.
func (r *ToolRecord) VersionStrings() []string {
	versions := make([]string, len(r.Versions))
	for i, rel := range r.Versions {
		versions[i] = rel.Version
	}
	return versions
}

// Release returns the release for an exact version string.
func (r *ToolRecord) Release(version string) (Release, bool) {
	for _, rel := range r.Versions {
		if rel.Version == version {
			return rel, true
		}
	}
	return Release{}, false
}

// UnavailableError reports that the registry could not be reached or its
// payload could not be decoded. It is distinct from a tool simply not
// being listed (ErrToolNotFound).
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("registry unavailable at %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ErrToolNotFound is returned by Lookup when the registry responds but does
// not list the requested tool.
var ErrToolNotFound = errors.New("tool not found in registry")

// Client queries a frate registry endpoint.
type Client struct {
	URL        string
	HTTPClient *http.Client

	// cached index for the lifetime of the client; a command run is
	// short-lived so there is no invalidation.
	tools []ToolRecord
}

// NewClient returns a client for the given registry URL. An empty url falls
// back to FRATE_REGISTRY and then the default upstream registry.
func NewClient(url string) *Client {
	if url == "" {
		url = os.Getenv(EnvURL)
	}
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Tools fetches and decodes the full registry index.
func (c *Client) Tools(ctx context.Context) ([]ToolRecord, error) {
	if c.tools != nil {
		return c.tools, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, &UnavailableError{URL: c.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: c.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{
			URL: c.URL,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{URL: c.URL, Err: err}
	}

	var tools []ToolRecord
	if err := json.Unmarshal(body, &tools); err != nil {
		return nil, &UnavailableError{
			URL: c.URL,
			Err: errors.Wrap(err, "failed to decode registry index"),
		}
	}

	c.tools = tools
	return tools, nil
}

// Lookup returns the record for one tool, or ErrToolNotFound when the
// registry does not list it.
func (c *Client) Lookup(ctx context.Context, name string) (*ToolRecord, error) {
	tools, err := c.Tools(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tools {
		if tools[i].Name == name {
			return &tools[i], nil
		}
	}
	return nil, errors.Wrapf(ErrToolNotFound, "%s", name)
}
