package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/shop-ops-api/internal/api/handler"
	"github.com/vfg2006/shop-ops-api/internal/api/handler/router"
	"github.com/vfg2006/shop-ops-api/internal/config"
	"github.com/vfg2006/shop-ops-api/internal/usecases/authenticating"
	"github.com/vfg2006/shop-ops-api/internal/usecases/insighting"
	"github.com/vfg2006/shop-ops-api/internal/usecases/inventory"
	"github.com/vfg2006/shop-ops-api/internal/usecases/ranking"
	"github.com/vfg2006/shop-ops-api/internal/usecases/tracking"
	"github.com/vfg2006/shop-ops-api/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

// Services agrupa os casos de uso expostos pela API
type Services struct {
	Insights      insighting.Insighter
	Inventory     inventory.Inventory
	Goals         tracking.GoalTracker
	Ranking       ranking.RankingService
	Authenticator authenticating.Authenticator
	CronJobs      handler.CronJobServices
}

type Server struct {
	httpServer *http.Server
	cleanups   []func() error
}

func New(config *config.Config, services Services) (*Server, error) {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck()...),
		router.WithRoutes(handler.Authentication(services.Authenticator)...),
		router.WithRoutes(handler.User(services.Authenticator)...),
		router.WithRoutes(handler.Dashboard(services.Insights, services.Ranking)...),
		router.WithRoutes(handler.Products(services.Inventory)...),
		router.WithRoutes(handler.Goals(services.Goals)...),
		router.WithRoutes(handler.CronJobs(services.CronJobs)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Cors.AllowedOrigins),
		middleware.AuthMiddleware(services.Authenticator),
		middleware.Impersonation(),
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           alice.New(middlewares...).Then(rt),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

// OnShutdown registra uma função de limpeza executada após o desligamento do HTTP
func (s *Server) OnShutdown(cleanup func() error) {
	s.cleanups = append(s.cleanups, cleanup)
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")

	for _, cleanup := range s.cleanups {
		if err := cleanup(); err != nil {
			logrus.WithError(err).Warn("Erro ao liberar recurso no desligamento")
		}
	}

	return nil
}
