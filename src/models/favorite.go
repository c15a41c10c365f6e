package models

// -----------------------------------------------------------------------------
// Favorites (persisted whole under a fixed collection key)
// -----------------------------------------------------------------------------

// MFavorite is one entry in the favorites collection, unique by game id.
type MFavorite struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Assets  *MGameAssets `json:"assets,omitempty"`
	AddedAt string       `json:"addedAt"`
}
