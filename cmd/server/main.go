package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tasknest/internal/config"
	"tasknest/internal/db"
	"tasknest/internal/middleware"
	"tasknest/internal/redis"
	"tasknest/internal/server"
	"tasknest/internal/services"
	"tasknest/internal/session"
	"tasknest/internal/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	var (
		users db.UserStore
		todos db.TodoStore
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		mem := db.NewMemoryStore()
		users, todos = mem, mem
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		conn, err := db.Open(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		store := db.NewStore(conn)
		users, todos = store, store
	}

	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = redis.NewSessionStore(rdb)
	} else {
		sessions = session.NewMemoryStore()
	}

	var mailer services.Mailer
	switch {
	case cfg.SMTPHost != "":
		mailer = utils.NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail)
	case !cfg.Production():
		logger.Warn("SMTP_HOST not set, outgoing mail is only logged")
		mailer = &utils.LogMailer{Logger: logger}
	default:
		return errors.New("no mail transport configured")
	}

	accounts := services.NewAccountService(services.AccountDeps{
		Users:      users,
		Todos:      todos,
		Sessions:   sessions,
		Hasher:     utils.NewBcryptHasher(cfg.BcryptCost),
		Tokens:     tokens,
		Mailer:     mailer,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := server.NewRouter(server.Deps{
		Accounts: accounts,
		Todos:    services.NewTodoService(todos, logger),
		Sessions: sessions,
		Tokens:   tokens,
		Cookie:   middleware.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.Production()},
		Registry: reg,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
