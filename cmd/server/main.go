/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the AuraTheraCare clinic server. Handles
  configuration, dependency injection, therapist seeding, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize the selected store backend
  3. Seed the therapist account
  4. Create the API handler with its dependencies
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -backend  Storage backend: memory, sqlite, or mongo (default: sqlite)
  -db       SQLite database path (default: clinic.db)
            Use ":memory:" for an in-memory database

ENVIRONMENT:
  JWT_SECRET       Token signing secret (required)
  MONGO_URI        MongoDB connection string (backend=mongo)
  MONGO_DATABASE   MongoDB database name (default: clinic)
  ADMIN_NAME       Seeded therapist name (default: Dr. Admin)
  ADMIN_EMAIL      Seeded therapist email (default: admin@auratheracare.com)
  ADMIN_PASSWORD   Seeded therapist password (required unless already seeded)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/clinic.db"

  # Run against MongoDB
  MONGO_URI="mongodb://localhost:27017" ./server -backend=mongo

  # Run fully in memory (no persistence)
  ./server -backend=memory

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go, store/mongo/mongo.go: Persistence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/auratheracare/clinic-engine/api"
	"github.com/auratheracare/clinic-engine/auth"
	"github.com/auratheracare/clinic-engine/clinic"
	clinicstore "github.com/auratheracare/clinic-engine/clinic/store"
	"github.com/auratheracare/clinic-engine/store/mongo"
	"github.com/auratheracare/clinic-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments use actual environment variables.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	backend := flag.String("backend", "sqlite", "storage backend: memory, sqlite, or mongo")
	dbPath := flag.String("db", "clinic.db", "SQLite database path")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	tokens, err := auth.NewTokenManager(secret)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	users, records, closeStore, err := openStore(*backend, *dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", *backend, err)
	}
	defer closeStore()

	service := clinic.NewService(users, records, clinic.DefaultPriceTable())
	authenticator := auth.NewAuthenticator(users, tokens)

	if err := seedTherapist(authenticator); err != nil {
		log.Fatalf("Failed to seed therapist account: %v", err)
	}

	handler := api.NewHandler(service, authenticator, tokens)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d (backend: %s)", *port, *backend)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// openStore constructs the selected backend. The returned closer is
// always safe to call.
func openStore(backend, dbPath string) (clinic.UserStore, clinic.RecordStore, func(), error) {
	switch backend {
	case "memory":
		mem := clinicstore.NewMemory()
		return mem, mem, func() {}, nil

	case "sqlite":
		store, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil

	case "mongo":
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			return nil, nil, nil, fmt.Errorf("MONGO_URI is required for the mongo backend")
		}
		database := os.Getenv("MONGO_DATABASE")
		if database == "" {
			database = "clinic"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := mongo.New(ctx, uri, database)
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			store.Close(ctx)
		}
		return store, store, closer, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q (want memory, sqlite, or mongo)", backend)
	}
}

func seedTherapist(authenticator *auth.Authenticator) error {
	name := envOr("ADMIN_NAME", "Dr. Admin")
	email := envOr("ADMIN_EMAIL", "admin@auratheracare.com")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("ADMIN_PASSWORD not set; skipping therapist seeding")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return authenticator.SeedTherapist(ctx, name, email, password)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
