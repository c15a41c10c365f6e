package favorites

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"deal-observer/src/logger"
	"deal-observer/src/models"

	_ "modernc.org/sqlite"
)

// CollectionKey is the fixed key the whole favorites collection lives under,
// matching the browser deployment's storage key.
const CollectionKey = "pc-price-lowest-favorites"

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS favorites_collections (
			collection_key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create favorites_collections: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Load reads the full collection under the fixed key. An absent row is an
// empty collection, not an error.
func (d *AsyncSQLiteDB) Load() ([]models.MFavorite, error) {
	var data string
	err := d.DB.QueryRow(
		`SELECT data FROM favorites_collections WHERE collection_key = ?`,
		CollectionKey,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return []models.MFavorite{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	var favorites []models.MFavorite
	if err := json.Unmarshal([]byte(data), &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	if favorites == nil {
		favorites = []models.MFavorite{}
	}
	return favorites, nil
}

// -----------------------------------------------------------------------------

// Replace rewrites the full collection in one statement.
func (d *AsyncSQLiteDB) Replace(favorites []models.MFavorite) error {
	data, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	_, err = d.DB.Exec(
		`INSERT INTO favorites_collections (collection_key, data, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(collection_key)
		 DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		CollectionKey, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
