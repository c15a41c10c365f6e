package quote

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"deal-observer/src/helpers"
	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------

// Assembler orchestrates the full quote-building protocol for one game id:
// concurrent upstream fan-out, normalization into a per-request row map, and
// serialization of the response contract.
type Assembler struct {
	Config *models.MConfig
	Deals  interfaces.IDealsAPI
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAssembler(cfg *models.MConfig, deals interfaces.IDealsAPI) *Assembler {
	return &Assembler{
		Config: cfg,
		Deals:  deals,
		Logger: logger.NewLogger(cfg.LogLevel, "QuoteAssembler"),
	}
}

// -----------------------------------------------------------------------------

// BuildQuote produces the externally-visible quote for one game id. A quote
// is all-or-nothing: if any of the fan-out calls fails, the whole assembly
// fails rather than presenting a partial page as accurate. In-flight sibling
// calls are left to finish; their results are simply discarded.
func (a *Assembler) BuildQuote(ctx context.Context, gameID string) (*models.MQuoteResponse, error) {
	if gameID == "" {
		return nil, &helpers.ValidationError{
			DealObserverError: helpers.DealObserverError{Message: "game id is required"},
		}
	}

	ids := []string{gameID}

	var (
		wg        sync.WaitGroup
		prices    []models.MPricesPayload
		storeLows []models.MStoreLowPayload
		overview  []models.MOverviewPayload

		pricesErr   error
		storeLowErr error
		overviewErr error
	)

	// Bundle data rides on the overview payload, so three concurrent calls
	// cover all four logical fetches. Join waits for every call; no
	// first-wins race, no cross-call cancellation.
	wg.Add(3)

	go func() {
		defer wg.Done()
		prices, pricesErr = a.Deals.PricesV3(ctx, ids)
	}()

	go func() {
		defer wg.Done()
		storeLows, storeLowErr = a.Deals.StoreLowV2(ctx, ids)
	}()

	go func() {
		defer wg.Done()
		overview, overviewErr = a.Deals.OverviewV2(ctx, ids)
	}()

	wg.Wait()

	for _, err := range []error{pricesErr, storeLowErr, overviewErr} {
		if err != nil {
			a.Logger.Error("Quote fan-out failed for %s: %v", gameID, err)
			return nil, &helpers.AssemblyError{
				DealObserverError: helpers.DealObserverError{Message: "quote assembly failed", Cause: err},
			}
		}
	}

	return a.assemble(gameID, firstPrices(prices), firstStoreLows(storeLows), firstOverview(overview)), nil
}

// -----------------------------------------------------------------------------

func (a *Assembler) assemble(
	gameID string,
	prices *models.MPricesPayload,
	storeLows *models.MStoreLowPayload,
	overview *models.MOverviewPayload,
) *models.MQuoteResponse {

	rows := make(map[int]*models.MMergedRow)
	IngestPrices(rows, prices)
	IngestStoreLows(rows, storeLows)

	// Title resolution: overview first, then prices, then the raw id. The
	// title is never left blank.
	title := gameID
	if prices != nil && prices.Title != "" {
		title = prices.Title
	}
	if overview != nil && overview.Title != "" {
		title = overview.Title
	}

	// Deterministic output ordering regardless of upstream array order.
	sorted := sortRows(rows)

	currentList := make([]models.MStoreRow, 0, len(sorted))
	historicalList := make([]models.MStoreRow, 0, len(sorted))

	for _, row := range sorted {
		// Only rows with a known current price make the current list;
		// historical-only rows still appear in the historical list.
		if row.Now != nil && row.Now.Price != nil {
			currentList = append(currentList, currentRow(row))
		}
		if row.StoreLowAll != nil {
			historicalList = append(historicalList, historicalRow(row))
		}
	}

	var bundles []models.MBundleInfo
	if overview != nil {
		bundles = NormalizeBundles(overview.Bundles)
	}

	quote := models.MQuoteData{
		Title:       title,
		List:        currentList,
		BundleInfo:  bundles,
		StoreLowAll: historicalList,
		Summary:     models.MQuoteSummary{AllTimeLow: NormalizeOverview(overview)},
	}

	return &models.MQuoteResponse{
		Data: map[string]models.MQuoteData{gameID: quote},
	}
}

// -----------------------------------------------------------------------------

func sortRows(rows map[int]*models.MMergedRow) []*models.MMergedRow {
	sorted := make([]*models.MMergedRow, 0, len(rows))
	for _, row := range rows {
		sorted = append(sorted, row)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StoreID < sorted[j].StoreID
	})
	return sorted
}

// -----------------------------------------------------------------------------

func currentRow(row *models.MMergedRow) models.MStoreRow {
	return models.MStoreRow{
		ID:               strconv.Itoa(row.StoreID),
		Name:             row.StoreName,
		PriceJPY:         *row.Now.Price,
		RegularPriceJPY:  row.Now.RegularPrice,
		DiscountPercent:  row.Now.Cut,
		IsOnSale:         row.Now.IsOnSale,
		URL:              row.Now.URL,
		Availability:     "available",
		Timestamp:        row.Now.Timestamp,
		SubscriptionInfo: row.Now.SubscriptionInfo,
	}
}

// -----------------------------------------------------------------------------

func historicalRow(row *models.MMergedRow) models.MStoreRow {
	result := models.MStoreRow{
		ID:           strconv.Itoa(row.StoreID),
		Name:         row.StoreName,
		Availability: "historical",
		Timestamp:    row.StoreLowAll.Date,
	}
	if row.StoreLowAll.Price != nil {
		result.PriceJPY = *row.StoreLowAll.Price
	}
	return result
}

// -----------------------------------------------------------------------------
// Payload selection: each upstream response is an array keyed by request
// order; a single-id request reads the first element.
// -----------------------------------------------------------------------------

func firstPrices(payloads []models.MPricesPayload) *models.MPricesPayload {
	if len(payloads) == 0 {
		return nil
	}
	return &payloads[0]
}

func firstStoreLows(payloads []models.MStoreLowPayload) *models.MStoreLowPayload {
	if len(payloads) == 0 {
		return nil
	}
	return &payloads[0]
}

func firstOverview(payloads []models.MOverviewPayload) *models.MOverviewPayload {
	if len(payloads) == 0 {
		return nil
	}
	return &payloads[0]
}
