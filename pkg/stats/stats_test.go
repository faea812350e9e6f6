package stats

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestHandler(t *testing.T) {
	is := is.New(t)
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	is.NoErr(err)
	defer resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	is.NoErr(err)
	is.True(strings.Contains(string(body), "go_goroutines"))
}
