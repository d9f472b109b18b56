package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagerecog/db"
	"imagerecog/internal/account"
	"imagerecog/internal/classify"
	"imagerecog/internal/config"
	"imagerecog/internal/ledger"
	"imagerecog/internal/web"
	"imagerecog/middleware"

	"go.mongodb.org/mongo-driver/mongo"
)

// Global loggers for different output streams
var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	infoLogger.Printf("Starting imagerecog API - Process ID: %d", os.Getpid())

	cfg, err := config.LoadConfig()
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	var sqliteDB *sql.DB
	var mongoClient *mongo.Client

	switch cfg.DatabaseType {
	case config.MongoDB:
		infoLogger.Println("Using MongoDB database")
		mongoClient, err = db.ConnectToMongo(cfg.MongoURI)
		if err != nil {
			errorLogger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
	default:
		infoLogger.Println("Using SQLite database")
		sqliteDB, err = db.ConnectToSQLite(cfg.SQLitePath)
		if err != nil {
			errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
		}
		if err := db.InitializeSchema(sqliteDB); err != nil {
			errorLogger.Fatalf("Failed to initialize database schema: %v", err)
		}
	}

	repoFactory := db.NewRepositoryFactory(sqliteDB, mongoClient, cfg.DatabaseName)
	userRepo := repoFactory.NewUserRepository()

	if mongoRepo, ok := userRepo.(*db.MongoUserRepository); ok {
		if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
			errorLogger.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
	}

	// Create database manager for concurrent access control
	dbManager := db.NewDBManager()

	// Initialize services with repositories
	accountService := account.NewAccountService(userRepo, cfg, dbManager)
	ledgerService := ledger.NewLedgerService(userRepo, cfg, dbManager)

	// External collaborators
	fetcher := classify.NewHTTPImageFetcher()
	classifier := classify.NewHTTPClassifier(cfg.ClassifierURL)

	// Initialize handlers
	accountHandlers := account.NewAccountHandlers(accountService)
	ledgerHandlers := ledger.NewLedgerHandlers(ledgerService)
	classifyHandlers := classify.NewClassifyHandlers(accountService, ledgerService, fetcher, classifier)

	router := web.NewRouter(accountHandlers, classifyHandlers, ledgerHandlers)
	handler := middleware.LoggingMiddleware(middleware.SetupCORS()(router))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	waitForShutdown(server, dbManager, userRepo)
}

func waitForShutdown(server *http.Server, dbManager *db.DBManager, userRepo db.UserRepository) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	infoLogger.Printf("Received shutdown signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	infoLogger.Println("Shutting down the server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		errorLogger.Printf("Server Shutdown error: %v", err)
	}

	dbManager.Stop()
	if err := userRepo.Close(); err != nil {
		errorLogger.Printf("Error closing user repository: %v", err)
	}
	infoLogger.Println("Services stopped")
}
