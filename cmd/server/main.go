package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/kyotransit/internal/arukumachi"
	"github.com/yourorg/kyotransit/internal/auth"
	"github.com/yourorg/kyotransit/internal/budget"
	"github.com/yourorg/kyotransit/internal/cache"
	"github.com/yourorg/kyotransit/internal/config"
	appdb "github.com/yourorg/kyotransit/internal/db"
	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/handlers"
	"github.com/yourorg/kyotransit/internal/refdata"
	"github.com/yourorg/kyotransit/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokenizer, err := budget.NewTokenizer()
	if err != nil {
		log.Fatalf("tokenizer: %v", err)
	}

	cache.InitCaches()

	app := fiber.New(fiber.Config{
		AppName:      "kyotransit",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	authSvc := auth.NewService(cfg.JWTSecret, cfg.APIKey)
	budgeter := budget.New(tokenizer, debug.Default())

	// The DB may come up after us. Retry in the background; handlers
	// report "server not ready" until Setup runs.
	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}

			provider := refdata.NewProvider(db)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := provider.Load(ctx); err != nil {
				log.Printf("reference data load deferred: %v", err)
			}
			cancel()

			scraper := arukumachi.NewScraper(
				cfg.UpstreamBaseURL,
				arukumachi.NewChromeFetcher(),
				provider,
				cache.PageCache,
				debug.Default(),
			)

			handlers.Setup(handlers.Deps{
				DB:       db,
				Config:   cfg,
				Scraper:  scraper,
				Budgeter: budgeter,
				Auth:     authSvc,
				Provider: provider,
			})
			log.Printf("database ready, search pipeline wired")
			return
		}
	}()

	routes.Register(app, authSvc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown: %v", err)
		}
		cache.StopCaches()
		tokenizer.Close()
		debug.Sync()
		os.Exit(0)
	}()

	log.Printf("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
