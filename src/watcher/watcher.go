package watcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"deal-observer/src/favorites"
	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/models"
	"deal-observer/src/quote"
)

// -----------------------------------------------------------------------------

// FavoritesWatcher periodically rebuilds quotes for every favorited game and
// pushes the snapshot through the data exchanger. One game failing to quote
// does not stop the others; the whole cycle is skipped only when the
// favorites store itself is unreadable.
type FavoritesWatcher struct {
	Config    *models.MConfig
	Assembler *quote.Assembler
	Favorites *favorites.Service
	Exchanger interfaces.IDataExchanger
	Logger    *logger.Logger

	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewFavoritesWatcher(cfg *models.MConfig, assembler *quote.Assembler, favService *favorites.Service, exchanger interfaces.IDataExchanger) *FavoritesWatcher {
	return &FavoritesWatcher{
		Config:    cfg,
		Assembler: assembler,
		Favorites: favService,
		Exchanger: exchanger,
		Logger:    logger.NewLogger(cfg.LogLevel, "FavoritesWatcher"),
	}
}

// -----------------------------------------------------------------------------

// Start begins the refresh loop
func (w *FavoritesWatcher) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning.Load() {
		return fmt.Errorf("favorites watcher is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	w.cancelFunc = cancel
	w.isRunning.Store(true)

	wg.Add(1)
	go w.runLoop(ctx, wg)
	w.Logger.Info("Started favorites watcher (interval %ds)", w.Config.Watcher.UpdateIntervalSeconds)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (w *FavoritesWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning.Load() {
		return fmt.Errorf("favorites watcher is not running")
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.isRunning.Store(false)
	w.Logger.Info("Stopped favorites watcher")
	return nil
}

// -----------------------------------------------------------------------------

// runLoop refreshes quotes on every tick until the context is cancelled.
func (w *FavoritesWatcher) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(time.Duration(w.Config.Watcher.UpdateIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// Refresh rebuilds quotes for all current favorites and broadcasts the
// snapshot when at least one quote succeeded.
func (w *FavoritesWatcher) Refresh(ctx context.Context) {
	list, err := w.Favorites.List()
	if err != nil {
		w.Logger.Error("Skipping refresh, favorites unavailable: %v", err)
		return
	}
	if len(list) == 0 {
		return
	}

	quotes := make(map[string]models.MQuoteData, len(list))

	for _, favorite := range list {
		if ctx.Err() != nil {
			return
		}

		result, err := w.Assembler.BuildQuote(ctx, favorite.ID)
		if err != nil {
			w.Logger.Warning("Refresh failed for %s (%s): %v", favorite.Title, favorite.ID, err)
			continue
		}

		data := result.Data[favorite.ID]
		quotes[favorite.ID] = data

		if active := quote.ActiveBundles(data.BundleInfo); len(active) > 0 {
			w.Logger.Debug("%s: %d active bundle(s)", favorite.Title, len(active))
		}
	}

	if len(quotes) == 0 {
		return
	}

	w.Exchanger.Broadcast(&models.MLatestQuotes{
		Type:      "UPDATE",
		Quotes:    quotes,
		Timestamp: time.Now().Unix(),
	})
	w.Logger.Info("Refreshed %d/%d favorited games", len(quotes), len(list))
}
