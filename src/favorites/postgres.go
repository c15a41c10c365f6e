package favorites

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"deal-observer/src/logger"
	"deal-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	return &PostgresDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS favorites_collections (
			collection_key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create favorites_collections: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Load() ([]models.MFavorite, error) {
	var data string
	err := d.DB.QueryRow(
		`SELECT data FROM favorites_collections WHERE collection_key = $1`,
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

func (d *PostgresDB) Replace(favorites []models.MFavorite) error {
	data, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	_, err = d.DB.Exec(
		`INSERT INTO favorites_collections (collection_key, data, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection_key)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		CollectionKey, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
