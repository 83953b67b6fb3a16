package bootstrap

import (
	"context"
	"log"
	"path/filepath"

	"ai-musictriage-be/internal/config"
	"ai-musictriage-be/internal/controller"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/handler"
	"ai-musictriage-be/internal/model"
	"ai-musictriage-be/internal/pkg/logger"
	"ai-musictriage-be/internal/repository/contract"
	"ai-musictriage-be/internal/repository/implementation"
	"ai-musictriage-be/internal/repository/memory"
	"ai-musictriage-be/internal/service"
	"ai-musictriage-be/internal/websocket"
	"ai-musictriage-be/pkg/classifier/factory"
	"ai-musictriage-be/pkg/database"
	librarySpotify "ai-musictriage-be/pkg/library/spotify"
	"ai-musictriage-be/pkg/playlist"
	"ai-musictriage-be/pkg/playlist/dryrun"
	playlistSpotify "ai-musictriage-be/pkg/playlist/spotify"
	spotifyapi "ai-musictriage-be/pkg/spotify"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const syncRetryTopic = "playlist-sync-retry"

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	SessionController controller.ISessionController
	ThemeController   controller.IThemeController

	// WebSockets
	EventHandler *handler.EventHandler
	WebSocketHub *websocket.Hub

	// Background services (exposed for main.go to run)
	SyncService service.ISyncService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Theme catalog
	themes := make([]entity.Theme, 0, len(cfg.Themes))
	for _, t := range cfg.Themes {
		themes = append(themes, entity.Theme{
			Key:         t.Key,
			Name:        t.Name,
			Description: t.Description,
			Shortcut:    t.Shortcut,
		})
	}
	catalog := entity.NewThemeCatalog(themes)

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Session state store: single-row upsert in postgres when a connection
	// string is configured, atomic snapshot files otherwise.
	var stateRepo contract.SessionStateRepository
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&model.SessionSnapshot{}); err != nil {
			log.Fatalf("[FATAL] Failed to migrate session snapshot table: %v", err)
		}
		stateRepo = implementation.NewGormStateRepository(db)
		log.Printf("[INFO] Using state store: POSTGRES")
	} else {
		stateRepo = implementation.NewFileStateRepository(cfg.App.DataDir)
		log.Printf("[INFO] Using state store: FILE (%s)", cfg.App.DataDir)
	}

	// Suggestion cache: memory front, durable back. Redis when configured,
	// a snapshot file otherwise.
	var backCache contract.SuggestionCacheRepository
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		backCache = implementation.NewRedisCacheRepository(rdb)
		log.Printf("[INFO] Using suggestion cache: REDIS")
	} else {
		backCache = implementation.NewFileCacheRepository(filepath.Join(cfg.App.DataDir, "suggestion-cache.json"))
		log.Printf("[INFO] Using suggestion cache: FILE")
	}
	suggestionCache := implementation.NewLayeredCacheRepository(memory.NewSuggestionCache(), backCache)

	// Classifier provider
	llmProvider, err := factory.NewProvider(cfg.Llm.Provider, cfg.Llm.Model, cfg.Llm.ApiKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize classifier provider: %v", err)
	}
	log.Printf("[INFO] Using classifier provider: %s (%s)", cfg.Llm.Provider, cfg.Llm.Model)

	// WebSocket hub
	wsHub := websocket.NewHub(sysLogger)
	go wsHub.Run()

	// Spotify auth and API client
	oauthConf := spotifyapi.NewOAuthConfig(
		cfg.Spotify.ClientID,
		cfg.Spotify.ClientSecret,
		cfg.Spotify.RedirectURL,
	)
	authService := service.NewAuthService(oauthConf, sysLogger)
	spotifyClient := spotifyapi.NewClient(authService.HTTPClient())

	source := librarySpotify.NewSpotifySource(spotifyClient, authService.UserId)

	var sink playlist.Sink
	if cfg.App.DryRun {
		sink = dryrun.New()
		log.Printf("[INFO] DRY_RUN enabled, playlist writes are recorded locally only")
	} else {
		sink = playlistSpotify.NewSpotifySink(spotifyClient, catalog)
	}

	publisherService := service.NewPublisherService(syncRetryTopic, pubSub)
	sessionService := service.NewSessionService(
		source,
		sink,
		stateRepo,
		catalog,
		publisherService,
		wsHub,
		sysLogger,
	)
	suggestionService := service.NewSuggestionService(
		llmProvider,
		suggestionCache,
		catalog,
		sessionService,
		wsHub,
		cfg.Llm.PrefetchWindow,
		cfg.Llm.BatchSize,
		sysLogger,
	)
	syncService := service.NewSyncService(
		pubSub,
		syncRetryTopic,
		sink,
		sessionService,
		publisherService,
		sysLogger,
	)
	exportService := service.NewExportService()

	return &Container{
		AuthController: controller.NewAuthController(authService),
		SessionController: controller.NewSessionController(
			sessionService,
			suggestionService,
			exportService,
			syncService,
		),
		ThemeController: controller.NewThemeController(catalog),
		EventHandler:    handler.NewEventHandler(wsHub, sysLogger),
		WebSocketHub:    wsHub,
		SyncService:     syncService,
		Logger:          sysLogger,
	}
}
