package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	header http.Header
}

func testServer(t *testing.T, status int, body string) (*Client, *recorded, func()) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		rec.header = r.Header.Clone()
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))

	client, err := NewClient(Config{URL: srv.URL, Key: "test-key"})
	require.NoError(t, err)
	return client, rec, srv.Close
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(Config{URL: "https://example.supabase.co"})
	require.Error(t, err)
	_, err = NewClient(Config{Key: "k"})
	require.Error(t, err)
}

func TestConfigValid(t *testing.T) {
	require.False(t, Config{}.Valid())
	require.False(t, Config{URL: "https://example.supabase.co"}.Valid())
	require.True(t, Config{URL: "https://example.supabase.co", Key: "k"}.Valid())
}

func TestSelectBuildsFiltersAndAuth(t *testing.T) {
	client, rec, done := testServer(t, http.StatusOK, `[{"id": 3}]`)
	defer done()

	var rows []struct {
		ID int64 `json:"id"`
	}
	err := client.Select(context.Background(), TableGigs, "id", Filters{"user_id": "user-1"}, &rows)
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, rec.method)
	require.Equal(t, "/rest/v1/gigs", rec.path)
	require.Equal(t, "id", rec.query["select"])
	require.Equal(t, "eq.user-1", rec.query["user_id"])
	require.Equal(t, "test-key", rec.header.Get("apikey"))
	require.Equal(t, "Bearer test-key", rec.header.Get("Authorization"))

	require.Len(t, rows, 1)
	require.Equal(t, int64(3), rows[0].ID)
}

func TestInsertPrefersMinimal(t *testing.T) {
	client, rec, done := testServer(t, http.StatusCreated, "")
	defer done()

	err := client.Insert(context.Background(), TablePackages, map[string]any{"name": "Basic"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/rest/v1/gig_packages", rec.path)
	require.Equal(t, "return=minimal", rec.header.Get("Prefer"))
}

func TestUpdateReturnsRepresentationWhenAsked(t *testing.T) {
	client, rec, done := testServer(t, http.StatusOK, `[]`)
	defer done()

	var out []json.RawMessage
	err := client.Update(context.Background(), TableGigs, map[string]any{"title": "x"}, Filters{"url": "u"}, &out)
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, rec.method)
	require.Equal(t, "return=representation", rec.header.Get("Prefer"))
	require.Equal(t, "eq.u", rec.query["url"])
	// Empty representation means the update matched nothing.
	require.Empty(t, out)
}

func TestDelete(t *testing.T) {
	client, rec, done := testServer(t, http.StatusNoContent, "")
	defer done()

	err := client.Delete(context.Background(), TableFeatures, Filters{"gig_id": "7"})
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "eq.7", rec.query["gig_id"])
}

func TestErrorStatusSurfaced(t *testing.T) {
	client, _, done := testServer(t, http.StatusUnauthorized, `{"message": "bad key"}`)
	defer done()

	err := client.Ping(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
