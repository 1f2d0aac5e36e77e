package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/budgetsakkie/pricefeed/internal/config"
	"github.com/budgetsakkie/pricefeed/internal/db"
	"github.com/budgetsakkie/pricefeed/internal/domain"
	"github.com/budgetsakkie/pricefeed/internal/ingest"
	"github.com/budgetsakkie/pricefeed/internal/middleware"
	"github.com/budgetsakkie/pricefeed/internal/store"
)

func main() {
	demo := flag.Bool("demo", false, "run against an in-memory store instead of Postgres")
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var gateway store.Gateway
	if *demo {
		gateway = demoGateway()
		log.Println("Running in demo mode with an in-memory store")
	} else {
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()
		gateway = store.NewPostgresGateway(conn.Pool)
	}

	service := ingest.NewService(gateway)

	importDefaults := ingest.DefaultImportOptions()
	if cfg.Ingest.BatchSize > 0 {
		importDefaults.Store.BatchSize = cfg.Ingest.BatchSize
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := middleware.LoggingMiddleware(corsHandler.Handler(ingest.NewHTTPHandler(service, importDefaults)))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting ingestion server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// demoGateway registers a sample price table so uploads work out of the box.
func demoGateway() *store.MemoryGateway {
	gateway := store.NewMemoryGateway()
	gateway.RegisterTable(domain.TableSchema{
		Name: "prices",
		Columns: []domain.ColumnSchema{
			{Name: "product_name", Type: domain.TypeText, Nullable: false},
			{Name: "retailer", Type: domain.TypeText, Nullable: false},
			{Name: "current_price", Type: domain.TypeNumeric, Nullable: false},
			{Name: "on_special", Type: domain.TypeBoolean, Nullable: true},
			{Name: "scraped_at", Type: domain.TypeTimestamp, Nullable: true},
		},
	})
	return gateway
}
