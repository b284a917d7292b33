package server

import (
	"context"
	"database/sql"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"golang.org/x/time/rate"

	"stayfinder-api/internal/config"
	"stayfinder-api/internal/database"
	"stayfinder-api/internal/handlers"
	"stayfinder-api/internal/middleware"
	"stayfinder-api/internal/router"
	"stayfinder-api/internal/services"
	"stayfinder-api/internal/store"
)

// Services holds all initialized services for the application
type Services struct {
	DB     *sql.DB
	Signer *services.StorageSigner
	Store  *store.ImageStore
	Search *services.SearchService
}

// InitServices initializes all application services based on configuration.
// Returns the initialized services or an error if initialization fails.
func InitServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Configure object-storage credentials
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		// Use JSON credentials from environment variable
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else {
		// Use credentials file (for local development)
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	signer := services.NewStorageSigner(storageClient, cfg.BucketName, cfg.SignedLinkTTL)
	imageStore := store.NewImageStore(db)
	searchService := services.NewSearchService(imageStore, signer)

	return &Services{
		DB:     db,
		Signer: signer,
		Store:  imageStore,
		Search: searchService,
	}, nil
}

// CreateHandler creates an HTTP handler with all middleware applied
func CreateHandler(searchService *services.SearchService, cfg *config.Config) http.Handler {
	// Initialize handlers
	h := handlers.New(searchService)

	// Setup router with middleware
	mux := router.Setup(h)

	// Apply global middleware
	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst, cfg.RateLimitCleanup)

	wrappedHandler := limiter.Limit(mux)
	wrappedHandler = middleware.RequestID(wrappedHandler)
	wrappedHandler = middleware.Logger(wrappedHandler)
	wrappedHandler = middleware.CORS(wrappedHandler, cfg.AllowedOrigins)

	return wrappedHandler
}
