package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/config"
	"github.com/iliyamo/title-review-api/internal/database"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/middleware"
	"github.com/iliyamo/title-review-api/internal/notifier"
	"github.com/iliyamo/title-review-api/internal/queue"
	"github.com/iliyamo/title-review-api/internal/rating"
	"github.com/iliyamo/title-review-api/internal/repository"
	"github.com/iliyamo/title-review-api/internal/router"
	queue_publisher "github.com/iliyamo/title-review-api/internal/service"
)

func main() {
	// Missing .env is fine in containers, where the environment is real.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	genres := repository.NewGenreRepo(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	signer := auth.NewSigner(cfg.SecretKey)
	ttl := time.Duration(cfg.AccessTTLDays) * 24 * time.Hour
	issuer := auth.NewTokenIssuer(cfg.SecretKey, ttl)
	verifier := auth.NewTokenVerifier(cfg.SecretKey)

	bus := event.New()
	rating.NewAggregator(titles, reviews).Register(bus)
	notifier.New(issuer, queue_publisher.PublishEmailQueued).Register(bus)

	// Drains auth.email into the mail outbox log until the process exits.
	go queue.StartMailConsumer()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Auth:       handler.NewAuthHandler(users, signer, issuer, bus),
		Users:      handler.NewUserHandler(users),
		Categories: handler.NewCategoryHandler(categories),
		Genres:     handler.NewGenreHandler(genres),
		Titles:     handler.NewTitleHandler(titles, categories, genres),
		Reviews:    handler.NewReviewHandler(titles, reviews, bus),
		Comments:   handler.NewCommentHandler(titles, reviews, comments),

		Authenticate: middleware.Authenticate(verifier, users),
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:        middleware.NewResponseCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
