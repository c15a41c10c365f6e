package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"deal-observer/src/config"
	"deal-observer/src/deals/itad"
	"deal-observer/src/deals/mock"
	"deal-observer/src/favorites"
	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/network"
	"deal-observer/src/quote"
	"deal-observer/src/server"
	"deal-observer/src/watcher"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Setup favorites storage
	var store interfaces.IFavoritesStore

	switch config.Storage.DBType {
	case "postgres":
		store, err = favorites.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = favorites.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init favorites store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate favorites store: %v", err)
	}
	defer store.Close()

	// 3. Setup deals source. The aggregator is only ever called from this
	// trusted process; the credential never reaches a browser.
	var netMgr interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)

	var deals interfaces.IDealsAPI
	if config.Deals.DemoMode {
		deals = mock.NewMockDealsSource(config.MConfig)
	} else {
		deals = itad.NewITADSource(config.MConfig, netMgr)
	}

	// 4. Core pipeline + API surface
	assembler := quote.NewAssembler(config.MConfig, deals)
	favService := favorites.NewService(config.MConfig, store)
	srv := server.NewAPIServer(config.MConfig, appLogger, deals, assembler, favService)

	// 5. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 6. Favorites watcher (optional live refresh feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}

	if config.Watcher.Enabled {
		favWatcher := watcher.NewFavoritesWatcher(config.MConfig, assembler, favService, srv)
		if err := favWatcher.Start(ctx, wrapWg); err != nil {
			appLogger.Critical("Failed to start favorites watcher: %v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("deal-observer running on %s:%d (source: %s)", config.Host, config.Port, deals.Name())

	<-quit
	appLogger.Info("Shutting down...")
	cancel()      // Signal watcher to stop
	wrapWg.Wait() // Wait for watcher to close
	srv.Stop()
}
