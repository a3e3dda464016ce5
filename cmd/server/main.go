package main

import (
	"context"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskboard/backend/api/handler"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/gitlab"
	"github.com/taskboard/backend/internal/infrastructure/monitor"
	redisInfra "github.com/taskboard/backend/internal/infrastructure/redis"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/router"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/services/lifecycle"
	"github.com/taskboard/backend/pkg/httpcontext"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/repository"
	"github.com/taskboard/backend/repository/bolt"
	"github.com/taskboard/backend/repository/memory"
	authUC "github.com/taskboard/backend/usecase/auth"
	boardUC "github.com/taskboard/backend/usecase/board"
	syncUC "github.com/taskboard/backend/usecase/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		taskStore   repository.TaskStore
		labelStore  repository.LabelStore
		columnStore repository.ColumnStore
		storeHealth monitor.StoreHealth
	)
	if cfg.Store.Path != "" {
		boltStore, err := bolt.Open(cfg.Store.Path)
		if err != nil {
			zapLogger.Fatal("failed to open snapshot store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return boltStore.Close()
		})
		taskStore, labelStore, columnStore = boltStore.Tasks(), boltStore.Labels(), boltStore.Columns()
		storeHealth = boltStore
		zapLogger.Info("snapshot store opened", zap.String("path", cfg.Store.Path))
	} else {
		memStore := memory.New()
		taskStore, labelStore, columnStore = memStore.Tasks(), memStore.Labels(), memStore.Columns()
		storeHealth = memStore
		zapLogger.Warn("no store path configured, board state is ephemeral")
	}

	boardUseCase := boardUC.New(taskStore, labelStore, columnStore, zapLogger)
	if err := boardUseCase.Init(appCtx); err != nil {
		zapLogger.Fatal("board init failed", zap.Error(err))
	}

	var redisClient *redislib.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	var (
		trackerClient *gitlab.Client
		issueAPI      gitlab.IssueAPI
		syncEngine    *syncUC.Engine
	)
	if cfg.GitLab.BaseURL != "" {
		trackerClient, err = gitlab.NewClient(gitlab.Config{
			BaseURL: cfg.GitLab.BaseURL,
			Token:   cfg.GitLab.Token,
			Timeout: cfg.Sync.FetchTimeout,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("tracker client failed", zap.Error(err))
		}
		issueAPI = trackerClient
		if redisClient != nil {
			issueAPI = gitlab.NewCache(issueAPI, redisClient, cfg.Redis.CacheTTL, zapLogger)
		}
		syncEngine = syncUC.NewEngine(boardUseCase, issueAPI, zapLogger)
	} else {
		zapLogger.Info("no tracker configured, sync endpoints disabled")
	}

	var trackerPinger monitor.TrackerPinger
	if trackerClient != nil {
		trackerPinger = trackerClient
	}
	mon := monitor.New(trackerPinger, storeHealth, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if syncEngine != nil && cfg.Sync.AutoInterval > 0 {
		autoSync := services.NewAutoSync(syncEngine, mon, zapLogger, services.AutoSyncConfig{
			Interval: cfg.Sync.AutoInterval,
			Timeout:  cfg.Sync.FetchTimeout,
		})
		autoSync.Start()
		manager.Register("autosync", func(ctx context.Context) error {
			autoSync.Stop(ctx)
			return nil
		})
	}

	authUseCase := authUC.New(cfg.Auth.JWTSecret, cfg.Auth.AccessKey, cfg.Auth.TokenTTL, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(boardUseCase, ctxAdapter, zapLogger),
		Column:   apiHandler.NewColumnHandler(boardUseCase, ctxAdapter, zapLogger),
		Label:    apiHandler.NewLabelHandler(boardUseCase, ctxAdapter, zapLogger),
		Sync:     apiHandler.NewSyncHandler(syncEngine, cfg.GitLab.ProjectID, ctxAdapter, zapLogger),
		Snapshot: apiHandler.NewSnapshotHandler(boardUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.Auth.JWTSecret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
