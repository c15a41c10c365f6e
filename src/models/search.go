package models

// -----------------------------------------------------------------------------
// Search Contract
// -----------------------------------------------------------------------------

// MGame is one title-search hit as returned to the UI. Type distinguishes
// games from DLC/package entries; the search endpoint filters on it.
type MGame struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Type   string       `json:"type,omitempty"`
	Assets *MGameAssets `json:"assets,omitempty"`
}

type MGameAssets struct {
	Banner145 string `json:"banner145,omitempty"`
	Banner300 string `json:"banner300,omitempty"`
	Boxart    string `json:"boxart,omitempty"`
}

type MSearchResponse struct {
	Data []MGame `json:"data"`
}
