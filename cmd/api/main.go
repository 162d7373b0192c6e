package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/shop-ops-api/infrastructure/cache"
	"github.com/vfg2006/shop-ops-api/infrastructure/database/postgres"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/api"
	"github.com/vfg2006/shop-ops-api/internal/api/handler"
	"github.com/vfg2006/shop-ops-api/internal/config"
	"github.com/vfg2006/shop-ops-api/internal/scheduler"
	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
	"github.com/vfg2006/shop-ops-api/internal/usecases/insighting"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
	"github.com/vfg2006/shop-ops-api/internal/usecases/ranking"
	"github.com/vfg2006/shop-ops-api/internal/usecases/tracking"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	productRepo := repository.NewProductRepository(pgConn)
	goalRepo := repository.NewGoalRepository(pgConn)

	insightService := insighting.NewService(productRepo, goalRepo)

	snapshotCache := redisCache(ctx, cfg.Cache)
	if snapshotCache != nil {
		insightService = insightService.WithCache(snapshotCache)
	}

	authenticator := authenticating.NewService(userRepo, cfg)
	inventoryService := inventory.NewService(productRepo, insightService)
	goalService := tracking.NewService(goalRepo, productRepo)
	rankingService := ranking.NewProductRankingService(productRepo)

	reconcileService := scheduler.NewProductTotalsReconcileService(productRepo, insightService, cfg)
	if err := reconcileService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação de totais")
	} else {
		logrus.Info("Agendador de reconciliação de totais iniciado com sucesso")
	}

	server, err := api.New(cfg, api.Services{
		Insights:      insightService,
		Inventory:     inventoryService,
		Goals:         goalService,
		Ranking:       rankingService,
		Authenticator: authenticator,
		CronJobs: handler.CronJobServices{
			ProductTotalsReconcileService: reconcileService,
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if snapshotCache != nil {
		server.OnShutdown(snapshotCache.Close)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// redisCache conecta ao Redis do cache do dashboard. Sem Redis, o dashboard é recalculado a cada requisição.
func redisCache(ctx context.Context, cacheConfig config.Cache) *cache.Cache {
	if !cacheConfig.Enabled {
		logrus.Info("Cache do dashboard desabilitado por configuração")
		return nil
	}

	c := cache.New(cache.NewRedisClient(cacheConfig), cacheConfig.Prefix, cacheConfig.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx); err != nil {
		logrus.WithError(err).WithField("addr", cacheConfig.RedisAddr).Warn("Redis indisponível, cache do dashboard desabilitado")
		_ = c.Close()
		return nil
	}

	logrus.WithField("addr", cacheConfig.RedisAddr).Info("Cache do dashboard em Redis habilitado")
	return c
}
