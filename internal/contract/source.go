package contract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// MaxSourceBytes caps how much of a remote source is read.
const MaxSourceBytes = 256 << 20

// FileSource reads loc.csv from the local filesystem.
type FileSource struct {
	Path string
}

var _ DataSource = &FileSource{} // Compile-time check

// NewFileSource creates a source for a local path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements the DataSource interface.
func (s *FileSource) Name() string { return s.Path }

// Fetch implements the DataSource interface.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource fetches loc.csv from an http(s) URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

var _ DataSource = &HTTPSource{} // Compile-time check

// NewHTTPSource creates a source for a URL with a bounded client timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Name implements the DataSource interface.
func (s *HTTPSource) Name() string { return s.URL }

// Fetch implements the DataSource interface.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", s.URL, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", s.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %q: unexpected status %s", s.URL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %q: %w", s.URL, err)
	}
	return data, nil
}

// NewDataSource picks the source implementation for a location.
func NewDataSource(location string) DataSource {
	if IsRemoteSource(location) {
		return NewHTTPSource(location)
	}
	return NewFileSource(location)
}
