package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"deal-observer/src/logger"
	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------

// MockDealsSource fabricates plausible-looking quote data so the UI stays
// demoable without a live credential. It is only ever selected through the
// explicit demo_mode config flag and announces itself loudly at startup;
// fabricated data must never be silently substituted for real data.
type MockDealsSource struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMockDealsSource(cfg *models.MConfig) *MockDealsSource {
	s := &MockDealsSource{
		Logger: logger.NewLogger(cfg.LogLevel, "MockDealsSource"),
	}
	s.Logger.Warning("DEMO MODE: serving fabricated deal data, not live aggregator responses")
	return s
}

// -----------------------------------------------------------------------------

func (s *MockDealsSource) Name() string {
	return "mock"
}

// -----------------------------------------------------------------------------

func (s *MockDealsSource) SearchByTitle(ctx context.Context, query string, results int) ([]models.MGame, error) {
	return []models.MGame{
		{ID: "mock-" + seedString(query), Title: query + " (Demo)", Type: "game"},
		{ID: "mock-" + seedString(query+"-dlc"), Title: query + " Expansion (Demo)", Type: "dlc"},
	}, nil
}

// -----------------------------------------------------------------------------

func (s *MockDealsSource) PricesV3(ctx context.Context, ids []string) ([]models.MPricesPayload, error) {
	payloads := make([]models.MPricesPayload, 0, len(ids))
	now := time.Now().UTC().Format(time.RFC3339)

	for _, id := range ids {
		base := basePrice(id)
		payloads = append(payloads, models.MPricesPayload{
			ID:    id,
			Title: demoTitle(id),
			Deals: []models.MDeal{
				{
					Shop:      models.MShop{ID: 61, Name: "Steam"},
					Price:     priceBlock(base / 2),
					Regular:   priceBlock(base),
					Cut:       50,
					URL:       "https://store.steampowered.com/app/demo/",
					Timestamp: now,
				},
				{
					Shop:      models.MShop{ID: 16, Name: "Epic Games Store"},
					Price:     priceBlock(base),
					Regular:   priceBlock(base),
					Cut:       0,
					URL:       "https://www.epicgames.com/store/p/demo",
					Timestamp: now,
				},
				{
					Shop:      models.MShop{ID: 35, Name: "GOG"},
					Price:     priceBlock(base * 9 / 10),
					Regular:   priceBlock(base),
					Cut:       10,
					URL:       "https://www.gog.com/game/demo",
					Timestamp: now,
				},
			},
		})
	}

	return payloads, nil
}

// -----------------------------------------------------------------------------

func (s *MockDealsSource) StoreLowV2(ctx context.Context, ids []string) ([]models.MStoreLowPayload, error) {
	payloads := make([]models.MStoreLowPayload, 0, len(ids))

	for _, id := range ids {
		base := basePrice(id)
		payloads = append(payloads, models.MStoreLowPayload{
			ID: id,
			Lows: []models.MStoreLow{
				{
					Shop:  models.MShop{ID: 61, Name: "Steam"},
					Price: models.FlexPriceOf(base * 4 / 10),
					Added: "2023-12-25",
				},
				{
					Shop:  models.MShop{ID: 35, Name: "GOG"},
					Price: models.FlexPriceOf(base / 2),
					Added: "2024-06-01",
				},
			},
		})
	}

	return payloads, nil
}

// -----------------------------------------------------------------------------

func (s *MockDealsSource) OverviewV2(ctx context.Context, ids []string) ([]models.MOverviewPayload, error) {
	payloads := make([]models.MOverviewPayload, 0, len(ids))

	for _, id := range ids {
		base := basePrice(id)
		payloads = append(payloads, models.MOverviewPayload{
			ID:    id,
			Title: demoTitle(id),
			Lowest: &models.MLowest{
				Price: models.FlexPriceOf(base * 4 / 10),
				Shop:  &models.MShop{Name: "Steam"},
				Added: "2023-12-25",
			},
			Bundles: []models.MBundle{
				{
					Title: "Demo Mega Bundle",
					URL:   "https://example.com/bundle/demo",
					Tiers: []models.MTier{{Price: priceBlock(base * 3 / 4)}},
				},
			},
		})
	}

	return payloads, nil
}

// -----------------------------------------------------------------------------

// basePrice derives a stable 1000-5999 yen price from the game id so repeated
// demo requests agree with each other.
func basePrice(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return 1000 + int(h.Sum32()%5000)
}

// -----------------------------------------------------------------------------

func seedString(input string) string {
	h := fnv.New32a()
	h.Write([]byte(input))
	return fmt.Sprintf("%08x", h.Sum32())
}

// -----------------------------------------------------------------------------

func demoTitle(id string) string {
	return fmt.Sprintf("Demo Game %s", seedString(id)[:4])
}

// -----------------------------------------------------------------------------

func priceBlock(yen int) *models.MPriceBlock {
	return &models.MPriceBlock{AmountInt: &yen}
}
