package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"aviary/internal/adapter/api"
	"aviary/internal/adapter/api/handler"
	apimiddleware "aviary/internal/adapter/api/middleware"
	"aviary/internal/adapter/api/router"
	"aviary/internal/adapter/repository"
	"aviary/internal/infrastructure/firebase"
	"aviary/internal/infrastructure/storage"
	"aviary/internal/optimize"
	"aviary/internal/usecase"
	"aviary/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	opts := credentialOptions()

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	registry := storage.NewRegistry(cfg.DefaultBackend)

	if cfg.CloudinaryCloudName != "" {
		cloudinaryBackend, err := storage.NewCloudinaryBackend(
			cfg.CloudinaryCloudName,
			cfg.CloudinaryAPIKey,
			cfg.CloudinaryAPISecret,
			cfg.CloudinaryFolder,
		)
		if err != nil {
			log.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
		registry.Register(cloudinaryBackend)
	}

	if cfg.FivemerrAPIKey != "" {
		registry.Register(storage.NewFivemerrBackend(cfg.FivemerrAPIURL, cfg.FivemerrAPIKey))
	}

	if cfg.StorageBucket != "" {
		gcsBackend, err := storage.NewGCSBackend(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer gcsBackend.Close()
		registry.Register(gcsBackend)
	}

	photoRepo := repository.NewFirestorePhotoRepository(firestoreClient)
	tagRepo := repository.NewFirestoreTagRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)

	if err := tagRepo.EnsureSystemTags(ctx); err != nil {
		log.Fatalf("Failed to seed system tags: %v", err)
	}

	engine := optimize.NewEngine(optimize.Config{
		CacheDir:       cfg.CacheDir,
		MaxEntries:     cfg.CacheMaxEntries,
		FetchTimeout:   cfg.FetchTimeout,
		DefaultQuality: cfg.DefaultQuality,
	})

	photoUseCase := usecase.NewPhotoUseCase(photoRepo, tagRepo, registry)
	tagUseCase := usecase.NewTagUseCase(tagRepo)

	handler.Setup(photoUseCase, tagUseCase, engine, cfg.DefaultQuality)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	firebaseAuthClient := firebase.NewAuthClient(authClient)
	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient, userRepo)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

// credentialOptions prefers inline service-account JSON (production);
// falls back to a file path for local development. With neither set the
// client libraries use application default credentials.
func credentialOptions() []option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(serviceAccountJSON))}
	}

	if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(serviceAccountPath)}
	}

	return nil
}
