package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WorldBankfinancials/ledger-api/internal/cache"
	"github.com/WorldBankfinancials/ledger-api/internal/config"
	"github.com/WorldBankfinancials/ledger-api/internal/fx"
	"github.com/WorldBankfinancials/ledger-api/internal/handler"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
	"github.com/WorldBankfinancials/ledger-api/internal/middleware"
	"github.com/WorldBankfinancials/ledger-api/internal/repository"
	"github.com/WorldBankfinancials/ledger-api/internal/service"
	"github.com/WorldBankfinancials/ledger-api/internal/service/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("ledger-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transferCache, err := cache.NewTransferCache(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer transferCache.Close()

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	adminActionRepo := repository.NewAdminActionRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	userSvc := service.NewUserService(userRepo, adminActionRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)
	pinSvc := service.NewPinService(userRepo, cfg.BcryptCost)
	accountSvc := service.NewAccountService(accountRepo, ledgerRepo)
	transferSvc := transfer.NewService(transactionRepo, accountRepo, ledgerRepo, pinSvc, db, cfg)
	approvalSvc := service.NewApprovalService(transactionRepo, accountRepo, ledgerRepo, adminActionRepo, transferCache, db)
	fundsSvc := service.NewFundsService(transactionRepo, accountRepo, ledgerRepo, adminActionRepo, db)
	ticketSvc := service.NewTicketService(ticketRepo, adminActionRepo)
	fxSvc := fx.NewRateService(cfg.FXSpreadPct)

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(userSvc)
	pinHandler := handler.NewPinHandler(pinSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	adminHandler := handler.NewAdminHandler(approvalSvc, fundsSvc, userSvc)
	ticketHandler := handler.NewTicketHandler(ticketSvc)
	fxHandler := handler.NewFXHandler(fxSvc)

	authed := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/fx/rate", fxHandler.GetRate)
	mux.HandleFunc("GET /api/v1/fx/quote", fxHandler.Quote)

	mux.Handle("GET /api/v1/me", authed(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/v1/me/pin", authed(http.HandlerFunc(pinHandler.Set)))
	mux.Handle("POST /api/v1/me/pin/verify", authed(http.HandlerFunc(pinHandler.Verify)))

	mux.Handle("POST /api/v1/accounts", authed(http.HandlerFunc(accountHandler.Create)))
	mux.Handle("GET /api/v1/accounts", authed(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /api/v1/accounts/{id}", authed(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("GET /api/v1/accounts/{id}/ledger", authed(http.HandlerFunc(accountHandler.Statement)))

	mux.Handle("POST /api/v1/transfers", authed(idempotent(http.HandlerFunc(transferHandler.Create))))
	mux.Handle("GET /api/v1/transfers", authed(http.HandlerFunc(transferHandler.List)))
	mux.Handle("GET /api/v1/transfers/{id}", authed(http.HandlerFunc(transferHandler.Get)))

	mux.Handle("POST /api/v1/tickets", authed(http.HandlerFunc(ticketHandler.Create)))
	mux.Handle("GET /api/v1/tickets", authed(http.HandlerFunc(ticketHandler.List)))

	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.AdminOnly(h))
	}
	mux.Handle("GET /api/v1/admin/transfers/pending", admin(adminHandler.ListPendingTransfers))
	mux.Handle("POST /api/v1/admin/transfers/{id}/approve", admin(adminHandler.ApproveTransfer))
	mux.Handle("POST /api/v1/admin/transfers/{id}/reject", admin(adminHandler.RejectTransfer))
	mux.Handle("POST /api/v1/admin/accounts/{id}/adjust", authed(middleware.AdminOnly(idempotent(http.HandlerFunc(adminHandler.AdjustBalance)))))
	mux.Handle("GET /api/v1/admin/customers", admin(adminHandler.ListCustomers))
	mux.Handle("POST /api/v1/admin/customers/{id}/verify", admin(adminHandler.VerifyCustomer))
	mux.Handle("GET /api/v1/admin/tickets", admin(ticketHandler.ListByStatus))
	mux.Handle("PUT /api/v1/admin/tickets/{id}/status", admin(ticketHandler.UpdateStatus))

	root := middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go cleanIdempotencyCache(cleanupCtx, idempotencyRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}

	var lastErr error
	for i := range 30 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}

func cleanIdempotencyCache(ctx context.Context, repo *repository.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Error("idempotency cache cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("idempotency cache cleaned", "removed", removed)
			}
		}
	}
}
