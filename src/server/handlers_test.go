package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"deal-observer/src/favorites"
	"deal-observer/src/logger"
	"deal-observer/src/models"
	"deal-observer/src/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fake upstream
// -----------------------------------------------------------------------------

type stubDealsAPI struct {
	searchResults []models.MGame
	searchErr     error

	prices   []models.MPricesPayload
	overview []models.MOverviewPayload

	pricesErr error
}

func (s *stubDealsAPI) Name() string { return "stub" }

func (s *stubDealsAPI) SearchByTitle(ctx context.Context, query string, results int) ([]models.MGame, error) {
	return s.searchResults, s.searchErr
}

func (s *stubDealsAPI) PricesV3(ctx context.Context, ids []string) ([]models.MPricesPayload, error) {
	return s.prices, s.pricesErr
}

func (s *stubDealsAPI) StoreLowV2(ctx context.Context, ids []string) ([]models.MStoreLowPayload, error) {
	return nil, nil
}

func (s *stubDealsAPI) OverviewV2(ctx context.Context, ids []string) ([]models.MOverviewPayload, error) {
	return s.overview, nil
}

// -----------------------------------------------------------------------------

func testServer(t *testing.T, deals *stubDealsAPI) *APIServer {
	t.Helper()

	cfg := &models.MConfig{
		Name:     "deal-observer-test",
		Host:     "127.0.0.1",
		Port:     0,
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType:             "sqlite",
			DBPath:             filepath.Join(t.TempDir(), "server_test.db"),
			DBConnectionString: "postgres://user:password@db/deals",
		},
		Deals: models.MDealsConfig{
			APIKey:        "secret-key",
			Country:       "JP",
			SearchResults: 20,
		},
	}
	log := logger.NewLogger(cfg.LogLevel, "test")

	store, err := favorites.NewAsyncSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	assembler := quote.NewAssembler(cfg, deals)
	favService := favorites.NewService(cfg, store)
	return NewAPIServer(cfg, log, deals, assembler, favService)
}

func perform(s *APIServer, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------
// Search
// -----------------------------------------------------------------------------

func TestSearchRequiresQuery(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = perform(s, http.MethodGet, "/api/search?query=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// -----------------------------------------------------------------------------

func TestSearchFiltersNonGameEntries(t *testing.T) {
	s := testServer(t, &stubDealsAPI{searchResults: []models.MGame{
		{ID: "G1", Title: "Some Game", Type: "game"},
		{ID: "D1", Title: "Some DLC", Type: "dlc"},
		{ID: "G2", Title: "Untyped Game"},
	}})

	rec := perform(s, http.MethodGet, "/api/search?query=some", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cacheHint, rec.Header().Get("Cache-Control"))

	var resp models.MSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "G1", resp.Data[0].ID)
	assert.Equal(t, "G2", resp.Data[1].ID)
}

// -----------------------------------------------------------------------------

func TestSearchUpstreamFailure(t *testing.T) {
	s := testServer(t, &stubDealsAPI{searchErr: errors.New("aggregator down")})

	rec := perform(s, http.MethodGet, "/api/search?query=some", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "aggregator down")
}

// -----------------------------------------------------------------------------
// Quote
// -----------------------------------------------------------------------------

func TestQuoteRequiresGameID(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodPost, "/api/quote", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = perform(s, http.MethodPost, "/api/quote", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// -----------------------------------------------------------------------------

func TestQuoteSuccess(t *testing.T) {
	price := 1000
	regular := 2000
	s := testServer(t, &stubDealsAPI{
		prices: []models.MPricesPayload{{
			ID: "G1",
			Deals: []models.MDeal{{
				Shop:    models.MShop{ID: 61, Name: "Steam"},
				Price:   &models.MPriceBlock{AmountInt: &price},
				Regular: &models.MPriceBlock{AmountInt: &regular},
				Cut:     50,
			}},
		}},
		overview: []models.MOverviewPayload{{ID: "G1", Title: "Some Game"}},
	})

	rec := perform(s, http.MethodPost, "/api/quote", []byte(`{"itadId":"G1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cacheHint, rec.Header().Get("Cache-Control"))

	var resp models.MQuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data["G1"]
	require.True(t, ok)
	assert.Equal(t, "Some Game", data.Title)
	require.Len(t, data.List, 1)
	assert.Equal(t, 1000, data.List[0].PriceJPY)
	assert.True(t, data.List[0].IsOnSale)
}

// -----------------------------------------------------------------------------

func TestQuoteUpstreamFailureIsOpaque(t *testing.T) {
	s := testServer(t, &stubDealsAPI{pricesErr: errors.New("secret internal detail")})

	rec := perform(s, http.MethodPost, "/api/quote", []byte(`{"itadId":"G1"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "quote failed")
	assert.NotContains(t, rec.Body.String(), "secret internal detail")
}

// -----------------------------------------------------------------------------
// Health / Config
// -----------------------------------------------------------------------------

func TestHealthReportsSource(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "stub", resp["source"])
}

// -----------------------------------------------------------------------------

func TestConfigRedactsSecrets(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-key")
	assert.NotContains(t, rec.Body.String(), "password")
}

// -----------------------------------------------------------------------------
// Favorites
// -----------------------------------------------------------------------------

func TestFavoritesToggleRoundTrip(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodPost, "/api/favorites/toggle", []byte(`{"id":"G1","title":"Some Game"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"favorite":true`)

	rec = perform(s, http.MethodGet, "/api/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []models.MFavorite `json:"data"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "G1", resp.Data[0].ID)

	rec = perform(s, http.MethodPost, "/api/favorites/toggle", []byte(`{"id":"G1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"favorite":false`)
}

// -----------------------------------------------------------------------------

func TestFavoritesToggleRequiresID(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	rec := perform(s, http.MethodPost, "/api/favorites/toggle", []byte(`{"title":"no id"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// -----------------------------------------------------------------------------

func TestFavoriteDelete(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})

	perform(s, http.MethodPost, "/api/favorites/toggle", []byte(`{"id":"G1"}`))

	rec := perform(s, http.MethodDelete, "/api/favorites/G1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = perform(s, http.MethodGet, "/api/favorites", nil)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}
