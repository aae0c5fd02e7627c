package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/ai"
	"github.com/01moynul/calibration-catalog/internal/auth"
	"github.com/01moynul/calibration-catalog/internal/chatbot"
	"github.com/01moynul/calibration-catalog/internal/config"
	"github.com/01moynul/calibration-catalog/internal/database"
	"github.com/01moynul/calibration-catalog/internal/email"
	"github.com/01moynul/calibration-catalog/internal/handlers"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/notify"
	"github.com/01moynul/calibration-catalog/internal/routes"
	"github.com/01moynul/calibration-catalog/internal/storage"
	"github.com/01moynul/calibration-catalog/internal/store"
	"github.com/01moynul/calibration-catalog/internal/tracer"
	"github.com/01moynul/calibration-catalog/internal/whatsapp"
)

const (
	shutdownTimeout = 10 * time.Second
	aiSearchLimit   = 8
)

// openDB loads the config and connects to MySQL.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(database.Options{
		DSN:          cfg.DSN(),
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Debug:        !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Println("Schema is up to date")
	return nil
}

func seed(ctx context.Context, cmd *cli.Command) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	return database.Seed(db)
}

func createAdmin(ctx context.Context, cmd *cli.Command) error {
	emailAddr := strings.ToLower(strings.TrimSpace(cmd.String("email")))
	plaintext := cmd.String("password")
	if len(plaintext) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	var password models.Password
	if err := password.Set(plaintext); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// 1. Existing account: reset the password.
	var admin models.AdminUser
	err = db.WithContext(ctx).Where("email = ?", emailAddr).First(&admin).Error
	switch {
	case err == nil:
		admin.Name = cmd.String("name")
		admin.PasswordHash = password.Hash
		if err := db.WithContext(ctx).Save(&admin).Error; err != nil {
			return fmt.Errorf("update admin: %w", err)
		}
		log.Printf("Updated admin %s (id %d)", admin.Email, admin.ID)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	// 2. New account.
	admin = models.AdminUser{Email: emailAddr, Name: cmd.String("name"), PasswordHash: password.Hash}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("Created admin %s (id %d)", admin.Email, admin.ID)
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. --- Database ---
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := database.Migrate(db); err != nil {
		return err
	}
	catalogStore := store.New(db)

	// 2. --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Redis at %s unreachable (%v); using in-memory chat sessions and no rate limiting.", cfg.RedisAddr, err)
			rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
			log.Println("Redis connection established")
		}
	}

	// 3. --- Notifications ---
	notifier := notify.NewService(
		email.NewMailer(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}),
		whatsapp.NewClient(whatsapp.Config{
			APIURL:  cfg.WhatsAppAPIURL,
			Token:   cfg.WhatsAppToken,
			PhoneID: cfg.WhatsAppPhoneID,
		}),
		cfg.NotifyRecipients(),
		cfg.WhatsAppTo,
	)

	// 4. --- Chatbot: sessions, optional AI, leads ---
	var sessions chatbot.SessionStore = chatbot.NewMemoryStore(cfg.ChatSessionTTL())
	if rdb != nil {
		sessions = chatbot.NewRedisStore(rdb, cfg.ChatSessionTTL())
	}

	var responder chatbot.Responder
	if cfg.GeminiAPIKey != "" {
		aiService, err := ai.NewAIService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, ai.StoreLookup(catalogStore, aiSearchLimit))
		if err != nil {
			log.Printf("WARNING: AI assistant disabled: %v", err)
		} else {
			defer aiService.Close()
			responder = aiService
		}
	}
	bot := chatbot.NewService(sessions, responder, &handlers.LeadRecorder{DB: db, Notifier: notifier})

	// 5. --- Tracing (optional) ---
	if cfg.OTelEndpoint != "" {
		tp, err := tracer.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.AppEnv)
		if err != nil {
			log.Printf("WARNING: tracing disabled: %v", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				tp.Shutdown(shutdownCtx)
			}()
		}
	}

	// --- Application Setup ---
	// We inject ALL dependencies into the Handlers struct.
	app := &handlers.Handlers{
		DB:       db,
		Store:    catalogStore,
		Files:    storage.NewLocal(cfg.UploadDir, cfg.BaseURL, cfg.MaxUploadBytes()),
		Notifier: notifier,
		Chatbot:  bot,
		Tokens:   auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL()),
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin:  cfg.CORSOrigin,
		UploadDir:   cfg.UploadDir,
		Redis:       rdb,
		RateLimit:   cfg.RateLimitPerMinute,
		Tracing:     cfg.OTelEndpoint != "",
		ServiceName: cfg.ServiceName,
	})
	// Larger multipart bodies spill to temp files.
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting catalog API server on port %s...", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
