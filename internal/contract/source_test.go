package contract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte("commit,file\n"), 0o600))

	src := NewDataSource(path)
	assert.IsType(t, &FileSource{}, src)
	assert.Equal(t, path, src.Name())

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "commit,file\n", string(data))

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.csv")).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFileSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource("loc.csv").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loc.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("commit,file\nabc,a.js\n"))
	}))
	defer srv.Close()

	src := NewDataSource(srv.URL + "/loc.csv")
	assert.IsType(t, &HTTPSource{}, src)

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc,a.js")

	_, err = NewHTTPSource(srv.URL + "/missing.csv").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
