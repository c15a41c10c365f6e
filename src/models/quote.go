package models

// -----------------------------------------------------------------------------
// Quote Response Contract (consumed by the UI layer)
// -----------------------------------------------------------------------------

type MQuoteResponse struct {
	Data map[string]MQuoteData `json:"data"`
}

type MQuoteData struct {
	Title       string        `json:"title"`
	List        []MStoreRow   `json:"list"`
	BundleInfo  []MBundleInfo `json:"bundleInfo"`
	StoreLowAll []MStoreRow   `json:"storeLowAll"`
	Summary     MQuoteSummary `json:"summary"`
}

type MQuoteSummary struct {
	AllTimeLow *MAllTimeLow `json:"allTimeLow"`
}

type MAllTimeLow struct {
	PriceJPY  int    `json:"priceJPY"`
	ShopName  string `json:"shopName"`
	Timestamp string `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Store Rows
// -----------------------------------------------------------------------------

// MStoreRow is one storefront's entry in the quote output. Prices are yen
// without minor units. RegularPriceJPY stays nil when upstream omitted it;
// zero is a legitimate price and must not stand in for "unknown".
type MStoreRow struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	PriceJPY         int                `json:"priceJPY"`
	RegularPriceJPY  *int               `json:"regularPriceJPY"`
	DiscountPercent  int                `json:"discountPercent"`
	IsOnSale         bool               `json:"isOnSale"`
	URL              string             `json:"url"`
	Availability     string             `json:"availability"`
	Timestamp        string             `json:"timestamp"`
	SubscriptionInfo *MSubscriptionInfo `json:"subscriptionInfo"`
}

// MSubscriptionInfo tags a zero price that is granted through a service
// rather than being a genuine free price.
type MSubscriptionInfo struct {
	Service string `json:"service"`
	Type    string `json:"type"` // "subscription" or "free"
}

type MBundleInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	PriceJPY int    `json:"priceJPY"`
}

// -----------------------------------------------------------------------------
// Merge Unit (internal to the assembler, one map per request)
// -----------------------------------------------------------------------------

// MMergedRow collects the two independently-sourced facets for one store.
// Either facet may be missing when the corresponding upstream call omitted
// the store.
type MMergedRow struct {
	StoreID     int
	StoreName   string
	Now         *MCurrentFacet
	StoreLowAll *MHistoricalFacet
}

type MCurrentFacet struct {
	Price            *int
	RegularPrice     *int
	Cut              int
	IsOnSale         bool
	SubscriptionInfo *MSubscriptionInfo
	Currency         string
	URL              string
	Timestamp        string
}

type MHistoricalFacet struct {
	Price *int
	Date  string
}
