package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"TransferApi/internal/events"
	"TransferApi/internal/handler"
	"TransferApi/internal/mongodb"
	"TransferApi/internal/repository"
	"TransferApi/internal/service"
)

const defaultDatabase = "starbucks"

func main() {
	// Checking required environment variables
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Fatal("Environment variable MONGODB_URI is not set")
	}

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = defaultDatabase
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// The pool dials lazily; the first transfer or health probe connects.
	pool := mongodb.NewPool(uri)

	var pub events.Publisher = events.NopPublisher{}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsPub, err := events.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("NATS connection failed: %v", err)
		}
		defer natsPub.Close()
		pub = natsPub
	}

	transferRepo := repository.NewMongoRepository(pool, dbName)
	transferService := service.NewTransferService(transferRepo, pub)
	transferHandler := handler.NewTransferHandler(transferService, pool)

	// Setting up routes
	router := mux.NewRouter()
	router.HandleFunc("/execute-transaction", transferHandler.HandleTransfer).Methods(http.MethodPost)
	router.HandleFunc("/health", transferHandler.HandleHealth).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("Server started on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	if err := pool.Close(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}
	log.Println("Server exiting")
}
