package favorites

import (
	"sync"
	"time"

	"deal-observer/src/helpers"
	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/models"
)

// -----------------------------------------------------------------------------

// Service serializes every mutation of the favorites collection. Each write
// re-reads the persisted state under the lock before applying its change, so
// interleaved toggles can never clobber each other through a stale in-memory
// snapshot.
type Service struct {
	Store  interfaces.IFavoritesStore
	Logger *logger.Logger
	mu     sync.Mutex
}

// -----------------------------------------------------------------------------

func NewService(cfg *models.MConfig, store interfaces.IFavoritesStore) *Service {
	return &Service{
		Store:  store,
		Logger: logger.NewLogger(cfg.LogLevel, "FavoritesService"),
	}
}

// -----------------------------------------------------------------------------

// List returns the current collection as persisted.
func (s *Service) List() ([]models.MFavorite, error) {
	favorites, err := s.Store.Load()
	if err != nil {
		return nil, s.wrap("list favorites", err)
	}
	return favorites, nil
}

// -----------------------------------------------------------------------------

// IsFavorite reports whether a game id is in the collection.
func (s *Service) IsFavorite(gameID string) (bool, error) {
	favorites, err := s.Store.Load()
	if err != nil {
		return false, s.wrap("check favorite", err)
	}
	return indexOf(favorites, gameID) >= 0, nil
}

// -----------------------------------------------------------------------------

// Count returns the number of favorites.
func (s *Service) Count() (int, error) {
	favorites, err := s.Store.Load()
	if err != nil {
		return 0, s.wrap("count favorites", err)
	}
	return len(favorites), nil
}

// -----------------------------------------------------------------------------

// Add inserts a favorite unless the game id is already present.
func (s *Service) Add(game models.MFavorite) error {
	_, err := s.mutate(func(favorites []models.MFavorite) ([]models.MFavorite, bool) {
		if indexOf(favorites, game.ID) >= 0 {
			return favorites, false
		}
		return append(favorites, stamped(game)), true
	})
	return err
}

// -----------------------------------------------------------------------------

// Remove deletes a favorite by game id; removing an absent id is a no-op.
func (s *Service) Remove(gameID string) error {
	_, err := s.mutate(func(favorites []models.MFavorite) ([]models.MFavorite, bool) {
		idx := indexOf(favorites, gameID)
		if idx < 0 {
			return favorites, false
		}
		return append(favorites[:idx], favorites[idx+1:]...), true
	})
	return err
}

// -----------------------------------------------------------------------------

// Toggle flips a game's membership and reports whether it is now a favorite.
func (s *Service) Toggle(game models.MFavorite) (bool, error) {
	added := false
	_, err := s.mutate(func(favorites []models.MFavorite) ([]models.MFavorite, bool) {
		idx := indexOf(favorites, game.ID)
		if idx >= 0 {
			return append(favorites[:idx], favorites[idx+1:]...), true
		}
		added = true
		return append(favorites, stamped(game)), true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// -----------------------------------------------------------------------------

// mutate is the single-writer critical section: load the latest persisted
// collection, apply the update, rewrite the whole collection.
func (s *Service) mutate(update func([]models.MFavorite) ([]models.MFavorite, bool)) ([]models.MFavorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites, err := s.Store.Load()
	if err != nil {
		return nil, s.wrap("load favorites", err)
	}

	next, changed := update(favorites)
	if !changed {
		return favorites, nil
	}

	if err := s.Store.Replace(next); err != nil {
		return nil, s.wrap("save favorites", err)
	}

	s.Logger.Debug("Favorites rewritten: %d entries", len(next))
	return next, nil
}

// -----------------------------------------------------------------------------

func (s *Service) wrap(operation string, err error) error {
	return &helpers.DatabaseError{
		DealObserverError: helpers.DealObserverError{Message: operation + " failed", Cause: err},
	}
}

// -----------------------------------------------------------------------------

func indexOf(favorites []models.MFavorite, gameID string) int {
	for i, favorite := range favorites {
		if favorite.ID == gameID {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

func stamped(game models.MFavorite) models.MFavorite {
	if game.AddedAt == "" {
		game.AddedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return game
}
