package interfaces

import "deal-observer/src/models"

// -----------------------------------------------------------------------------
// IFavoritesStore defines the contract for favorites persistence.
// The collection lives whole under one fixed key and is rewritten on every
// mutation, mirroring a browser-local key-value store.
// -----------------------------------------------------------------------------

type IFavoritesStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Load reads the full favorites collection.
	Load() ([]models.MFavorite, error)

	// -----------------------------------------------------------------------------

	// Replace rewrites the full favorites collection.
	Replace(favorites []models.MFavorite) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
