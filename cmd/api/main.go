package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/captcha"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/mail"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	sessionrepo "storefront/internal/repository/session"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reportsvc "storefront/internal/service/report"
	usersvc "storefront/internal/service/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// redisSessionTTL outlives the idle timeout so idle sessions are still found
// and reported as such.
const redisSessionTTL = 24 * time.Hour

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	sessionRepo, closeSessions, err := openSessionStore(ctx, cfg, dbpool)
	if err != nil {
		logger.Fatalf("open session store: %v", err)
	}
	defer closeSessions()

	txManager := db.NewTxManager(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)

	productService := productsvc.New(productRepo, orderRepo, logger)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	cartService := cartsvc.New(cartRepo, productRepo, txManager, logger)
	orderService := ordersvc.New(orderRepo, cartRepo, txManager, logger)
	reportService := reportsvc.New(orderRepo, cfg.ReportLocation(), logger)

	sessions := usersvc.NewSessions(sessionRepo, cfg.SessionIdleTimeout, logger)
	accountService := usersvc.New(usersvc.Deps{
		Users:    userrepo.NewPostgres(dbpool, logger),
		Tokens:   tokenrepo.NewPostgres(dbpool),
		Sessions: sessions,
		Mailer: mail.New(mail.Settings{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		}, logger),
		Captcha: captcha.NewTurnstile(cfg.TurnstileSecret),
		BaseURL: cfg.BaseURL,
		Logger:  logger,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:   productService,
		CategorySvc:  categoryService,
		CartSvc:      cartService,
		OrderSvc:     orderService,
		ReportSvc:    reportService,
		AccountSvc:   accountService,
		Sessions:     sessions,
		SessionStore: httpserver.NewCookieStore(cfg.SessionSecret, cfg.CookieSecure),
		CORSOrigins:  cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func openSessionStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (sessionrepo.Repository, func(), error) {
	switch cfg.SessionBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return sessionrepo.NewRedis(client, redisSessionTTL), func() { _ = client.Close() }, nil
	case "postgres", "":
		return sessionrepo.NewPostgres(pool), func() {}, nil
	default:
		return nil, nil, errors.New("unknown SESSION_BACKEND " + cfg.SessionBackend)
	}
}
