package quote

import (
	"time"

	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------
// Response Normalizer
//
// Converts the three independently-shaped aggregator payloads into one
// per-store row map. Missing numerics stay nil; zero is a legitimate price
// (free giveaways, subscription access) and must never be conflated with
// "unknown".
// -----------------------------------------------------------------------------

// subscriptionTable maps a store id to the descriptor explaining its zero
// prices. The aggregator does not label this distinction, so the mapping is
// fixed here; stores outside the table get no descriptor. Only these two
// entries have been observed in practice.
var subscriptionTable = map[int]models.MSubscriptionInfo{
	// Microsoft Store
	48: {Service: "Xbox Game Pass", Type: "subscription"},
	// Epic free giveaways
	16: {Service: "Epic Games Store", Type: "free"},
}

// -----------------------------------------------------------------------------

// ensureRow returns the row for a store id, inserting an empty one on first
// sight. Store identity always comes from the payload's embedded shop object.
func ensureRow(rows map[int]*models.MMergedRow, shop models.MShop) *models.MMergedRow {
	if row, ok := rows[shop.ID]; ok {
		return row
	}
	row := &models.MMergedRow{StoreID: shop.ID, StoreName: shop.Name}
	rows[shop.ID] = row
	return row
}

// -----------------------------------------------------------------------------

// IngestPrices upserts the current-price facet for every deal entry.
func IngestPrices(rows map[int]*models.MMergedRow, payload *models.MPricesPayload) {
	if payload == nil {
		return
	}

	for _, deal := range payload.Deals {
		row := ensureRow(rows, deal.Shop)

		price := deal.Price.Value()
		regular := deal.Regular.Value()
		cut := deal.Cut

		// All three conditions must hold: a nonzero cut alone is not
		// trusted, upstream occasionally ships stale fields.
		isOnSale := cut > 0 &&
			regular != nil && *regular > 0 &&
			price != nil && *price < *regular

		var subscription *models.MSubscriptionInfo
		if price != nil && *price == 0 {
			if info, ok := subscriptionTable[deal.Shop.ID]; ok {
				sub := info
				subscription = &sub
			}
		}

		currency := "JPY"
		if deal.Price != nil && deal.Price.Currency != "" {
			currency = deal.Price.Currency
		}

		timestamp := deal.Timestamp
		if timestamp == "" {
			timestamp = time.Now().UTC().Format(time.RFC3339)
		}

		row.Now = &models.MCurrentFacet{
			Price:            price,
			RegularPrice:     regular,
			Cut:              cut,
			IsOnSale:         isOnSale,
			SubscriptionInfo: subscription,
			Currency:         currency,
			URL:              deal.URL,
			Timestamp:        timestamp,
		}
	}
}

// -----------------------------------------------------------------------------

// IngestStoreLows upserts the historical-low facet for every low entry.
func IngestStoreLows(rows map[int]*models.MMergedRow, payload *models.MStoreLowPayload) {
	if payload == nil {
		return
	}

	for _, low := range payload.Lows {
		row := ensureRow(rows, low.Shop)

		date := low.Added
		if date == "" {
			date = low.Recorded
		}

		row.StoreLowAll = &models.MHistoricalFacet{
			Price: low.Price.Value(),
			Date:  date,
		}
	}
}

// -----------------------------------------------------------------------------

// NormalizeOverview extracts the single global all-time-low summary, or nil
// when the overview carries none.
func NormalizeOverview(payload *models.MOverviewPayload) *models.MAllTimeLow {
	if payload == nil || payload.Lowest == nil {
		return nil
	}

	summary := &models.MAllTimeLow{Timestamp: payload.Lowest.Added}
	if price := payload.Lowest.Price.Value(); price != nil {
		summary.PriceJPY = *price
	}
	if payload.Lowest.Shop != nil {
		summary.ShopName = payload.Lowest.Shop.Name
	}
	return summary
}

// -----------------------------------------------------------------------------

// NormalizeBundles maps raw bundles into the response shape, defaulting
// missing fields to empty-string/zero rather than dropping entries.
func NormalizeBundles(bundles []models.MBundle) []models.MBundleInfo {
	result := make([]models.MBundleInfo, 0, len(bundles))

	for _, bundle := range bundles {
		info := models.MBundleInfo{
			Name: bundle.Title,
			URL:  bundle.URL,
		}
		if len(bundle.Tiers) > 0 {
			if price := bundle.Tiers[0].Price.Value(); price != nil {
				info.PriceJPY = *price
			}
		}
		result = append(result, info)
	}

	return result
}

// -----------------------------------------------------------------------------

// ActiveBundles filters to the offers worth surfacing: a bundle counts as
// currently active only with both a positive price and a link.
func ActiveBundles(bundles []models.MBundleInfo) []models.MBundleInfo {
	var active []models.MBundleInfo
	for _, bundle := range bundles {
		if bundle.PriceJPY > 0 && bundle.URL != "" {
			active = append(active, bundle)
		}
	}
	return active
}
