package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moved":
			http.Redirect(w, r, "/page", http.StatusFound)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(strings.Repeat("x", 100)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(time.Second, "")
	ctx := context.Background()

	resp, err := c.Get(ctx, srv.URL+"/moved", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Len(t, resp.Body, 100)
	assert.Equal(t, srv.URL+"/page", resp.FinalURL)

	resp, err = c.Get(ctx, srv.URL+"/page", 100)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)

	_, err = c.Get(ctx, srv.URL+"/page", 99)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	resp, err = c.Get(ctx, srv.URL+"/missing", 10)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
