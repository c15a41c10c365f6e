package interfaces

import (
	"context"

	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------
// IDealsAPI is the contract against the deals aggregator's read endpoints.
// The live implementation talks to IsThereAnyDeal; a fabricated-data
// implementation exists for demo deployments without a credential.
// -----------------------------------------------------------------------------

type IDealsAPI interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// SearchByTitle performs a fuzzy title search.
	SearchByTitle(ctx context.Context, query string, results int) ([]models.MGame, error)

	// -----------------------------------------------------------------------------

	// PricesV3 fetches current per-store prices for the given game ids.
	PricesV3(ctx context.Context, ids []string) ([]models.MPricesPayload, error)

	// -----------------------------------------------------------------------------

	// StoreLowV2 fetches per-store historical lows for the given game ids.
	StoreLowV2(ctx context.Context, ids []string) ([]models.MStoreLowPayload, error)

	// -----------------------------------------------------------------------------

	// OverviewV2 fetches the all-time overview (lowest ever + bundles).
	OverviewV2(ctx context.Context, ids []string) ([]models.MOverviewPayload, error)
}
