package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/tropicaldog17/cryptofolio/internal/config"
	"github.com/tropicaldog17/cryptofolio/internal/db"
	"github.com/tropicaldog17/cryptofolio/internal/handlers"
	"github.com/tropicaldog17/cryptofolio/internal/logger"
	"github.com/tropicaldog17/cryptofolio/internal/repositories"
	"github.com/tropicaldog17/cryptofolio/internal/scheduler"
	"github.com/tropicaldog17/cryptofolio/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Database connection
	database, err := db.Connect(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		log.Fatal("Database health check failed:", err)
	}
	zlog.Info("database ready")

	// Initialize services
	repo := repositories.NewSnapshotRepository(database)
	adapter := services.NewSchemaAdapter()
	store := services.NewPortfolioService(repo, adapter, cfg.BootstrapPath, zlog)
	if err := store.Load(context.Background()); err != nil {
		log.Fatal("Failed to load portfolio:", err)
	}

	feed := services.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.HTTPTimeout)
	priceSync := services.NewPriceSyncService(store, feed, zlog)
	search := services.NewSearchScheduler(feed, cfg.SearchDebounce, zlog)

	// Periodic price refresh
	sched, err := scheduler.New(zlog)
	if err != nil {
		log.Fatal("Failed to create scheduler:", err)
	}
	if err := sched.NewIntervalJob("price-refresh", priceSync.Refresh, cfg.RefreshInterval, true); err != nil {
		log.Fatal("Failed to register refresh job:", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize handlers
	portfolioHandler := handlers.NewPortfolioHandler(store, adapter, priceSync, zlog)
	priceHandler := handlers.NewPriceHandler(priceSync, search, zlog)
	relay := handlers.NewRelayHandler(cfg.CoinGeckoURL, cfg.HTTPTimeout, zlog)
	static := handlers.NewStaticHandler(cfg.StaticDir, cfg.BootstrapPath)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"cryptofolio-backend"}`))
	})

	// API endpoints
	router.HandleFunc("/api/portfolio", portfolioHandler.HandlePositions).Methods(http.MethodGet)
	router.HandleFunc("/api/portfolio/dashboard", portfolioHandler.HandleDashboard).Methods(http.MethodGet)
	router.HandleFunc("/api/portfolio/fills", portfolioHandler.HandleAddFill).Methods(http.MethodPost)
	router.HandleFunc("/api/portfolio/positions/{symbol}/fills/{id}", portfolioHandler.HandleDeleteFill).Methods(http.MethodDelete)
	router.HandleFunc("/api/portfolio/import", portfolioHandler.HandleImport).Methods(http.MethodPost)
	router.HandleFunc("/api/portfolio/export", portfolioHandler.HandleExport).Methods(http.MethodGet)
	router.HandleFunc("/api/prices/refresh", priceHandler.HandleRefresh).Methods(http.MethodPost)
	router.HandleFunc("/api/prices/status", priceHandler.HandleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/search", priceHandler.HandleSearch).Methods(http.MethodGet)

	// Everything else under /api relays to the upstream feed; remaining
	// paths serve static assets.
	router.PathPrefix("/api/").Handler(relay)
	router.PathPrefix("/").Handler(static)

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	zlog.Sugar().Infof("server starting on port %s", cfg.ServerPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, corsHandler(router)))
}
