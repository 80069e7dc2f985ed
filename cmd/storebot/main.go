package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/premstore/storebot/internal/bot"
	"github.com/premstore/storebot/internal/carts"
	"github.com/premstore/storebot/internal/catalog"
	"github.com/premstore/storebot/internal/config"
	"github.com/premstore/storebot/internal/deposits"
	"github.com/premstore/storebot/internal/httpserver"
	"github.com/premstore/storebot/internal/logging"
	"github.com/premstore/storebot/internal/orders"
	"github.com/premstore/storebot/internal/settings"
	"github.com/premstore/storebot/internal/storage"
	"github.com/premstore/storebot/internal/users"
)

const cartSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LOG_LEVEL)

	st, err := storage.NewJSONStore(cfg.DATA_DIR)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	cat := catalog.NewService(st)
	usr := users.NewService(st)
	ord := orders.NewService(st, cat)
	crt := carts.NewService(cfg.CART_TTL)
	set := settings.NewService(st)
	dep := deposits.NewService(st, set, usr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cat.SeedDefaults(ctx); err != nil {
		logger.Error("catalog seed failed", "error", err)
		os.Exit(1)
	}

	var tgBot *bot.Bot
	if cfg.BOT_TOKEN != "" {
		tgBot, err = bot.New(cfg.BOT_TOKEN, &bot.Deps{
			Catalog:  cat,
			Orders:   ord,
			Users:    usr,
			Carts:    crt,
			Deposits: dep,
			Settings: set,
			AdminIDs: cfg.ADMIN_CHAT_IDS,
			Logger:   logger,
		})
		if err != nil {
			logger.Error("bot init failed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := tgBot.Run(ctx); err != nil {
				logger.Error("bot stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("BOT_TOKEN not set, serving admin API only")
	}

	go func() {
		t := time.NewTicker(cartSweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				crt.Sweep()
			}
		}
	}()

	deps := httpserver.Deps{
		Products: &httpserver.ProductHandler{Catalog: cat},
		Orders:   &httpserver.OrderHandler{Orders: ord},
		Deposits: &httpserver.DepositHandler{Deposits: dep},
		Settings: &httpserver.SettingsHandler{Settings: set},
	}
	if tgBot != nil {
		deps.Orders.Notifier = tgBot
		deps.BotName = tgBot.Username
	}
	if cfg.AdminAuthEnabled() {
		deps.Auth = &httpserver.AuthHandler{
			PasswordHash: cfg.ADMIN_PASSWORD_HASH,
			JWTSecret:    []byte(cfg.JWT_SECRET),
		}
	} else {
		logger.Warn("admin auth not configured, API is open")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("admin API listening", "addr", cfg.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	go func() {
		<-quit
		logger.Error("forced exit")
		os.Exit(1)
	}()

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
