package itad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------

// ITADSource talks to the IsThereAnyDeal API. All four endpoints funnel
// through the shared retrying network manager; the endpoint wrappers only fix
// the query shape and the HTTP method per the aggregator's contract.
type ITADSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewITADSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *ITADSource {
	return &ITADSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "ITADSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *ITADSource) Name() string {
	return "itad"
}

// -----------------------------------------------------------------------------

// SearchByTitle performs a fuzzy title search (GET /games/search/v1).
func (s *ITADSource) SearchByTitle(ctx context.Context, query string, results int) ([]models.MGame, error) {
	params := map[string]string{
		"title":   query,
		"results": strconv.Itoa(results),
	}

	respBytes, err := s.Network.Do(ctx, http.MethodGet, s.endpoint("/games/search/v1"), params, nil, "search")
	if err != nil {
		return nil, err
	}

	var games []models.MGame
	if err := json.Unmarshal(respBytes, &games); err != nil {
		return nil, fmt.Errorf("search: json unmarshal failed: %w", err)
	}
	return games, nil
}

// -----------------------------------------------------------------------------

// PricesV3 fetches current per-store prices (POST /games/prices/v3).
func (s *ITADSource) PricesV3(ctx context.Context, ids []string) ([]models.MPricesPayload, error) {
	params := map[string]string{
		"country": s.Config.Deals.Country,
		"shops":   s.shopList(),
		"deals":   "false",
	}

	body, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	respBytes, err := s.Network.Do(ctx, http.MethodPost, s.endpoint("/games/prices/v3"), params, body, "prices-v3")
	if err != nil {
		return nil, err
	}

	var payloads []models.MPricesPayload
	if err := json.Unmarshal(respBytes, &payloads); err != nil {
		return nil, fmt.Errorf("prices-v3: json unmarshal failed: %w", err)
	}
	return payloads, nil
}

// -----------------------------------------------------------------------------

// StoreLowV2 fetches per-store all-time lows (POST /games/storelow/v2).
func (s *ITADSource) StoreLowV2(ctx context.Context, ids []string) ([]models.MStoreLowPayload, error) {
	params := map[string]string{
		"country": s.Config.Deals.Country,
		"shops":   s.shopList(),
	}

	body, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	respBytes, err := s.Network.Do(ctx, http.MethodPost, s.endpoint("/games/storelow/v2"), params, body, "storelow-v2")
	if err != nil {
		return nil, err
	}

	var payloads []models.MStoreLowPayload
	if err := json.Unmarshal(respBytes, &payloads); err != nil {
		return nil, fmt.Errorf("storelow-v2: json unmarshal failed: %w", err)
	}
	return payloads, nil
}

// -----------------------------------------------------------------------------

// OverviewV2 fetches the all-time summary plus bundle data
// (POST /games/overview/v2). No shop allowlist applies here.
func (s *ITADSource) OverviewV2(ctx context.Context, ids []string) ([]models.MOverviewPayload, error) {
	params := map[string]string{
		"country": s.Config.Deals.Country,
	}

	body, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	respBytes, err := s.Network.Do(ctx, http.MethodPost, s.endpoint("/games/overview/v2"), params, body, "overview-v2")
	if err != nil {
		return nil, err
	}

	var payloads []models.MOverviewPayload
	if err := json.Unmarshal(respBytes, &payloads); err != nil {
		return nil, fmt.Errorf("overview-v2: json unmarshal failed: %w", err)
	}
	return payloads, nil
}

// -----------------------------------------------------------------------------

func (s *ITADSource) endpoint(path string) string {
	return strings.TrimRight(s.Config.Deals.BaseURL, "/") + path
}

// -----------------------------------------------------------------------------

func (s *ITADSource) shopList() string {
	parts := make([]string, 0, len(s.Config.Deals.Shops))
	for _, id := range s.Config.Deals.Shops {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
