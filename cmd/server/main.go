package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/peerauto/car-rental-api/internal/config"
	"github.com/peerauto/car-rental-api/internal/database"
	"github.com/peerauto/car-rental-api/internal/handler"
	"github.com/peerauto/car-rental-api/internal/metrics"
	"github.com/peerauto/car-rental-api/internal/middleware"
	"github.com/peerauto/car-rental-api/internal/notify"
	"github.com/peerauto/car-rental-api/internal/queue"
	"github.com/peerauto/car-rental-api/internal/repository"
	"github.com/peerauto/car-rental-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public-catalogue response cache and the rate
	// limiter.  Both degrade to no-ops when Redis is unreachable.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	metrics.Register()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	listings := repository.NewListingRepo(db)
	bookings := repository.NewBookingRepo(db)
	ratings := repository.NewRatingRepo(db)
	favorites := repository.NewFavoriteRepo(db)

	notifier := notify.New(cfg.TelegramToken, cfg.TelegramChatID)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	listingH := handler.NewListingHandler(listings, ratings, notifier)
	bookingH := handler.NewBookingHandler(bookings, listings, notifier)
	ratingH := handler.NewRatingHandler(ratings, listings)
	favoriteH := handler.NewFavoriteHandler(favorites, listings)
	searchH := handler.NewSearchHandler(listings)
	adminH := handler.NewAdminHandler(listings, bookings)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, searchH, listingH, ratingH, bookingH,
		middleware.ResponseCache(cacheCfg, rdb))
	router.RegisterUser(e, listingH, bookingH, ratingH, favoriteH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Consume booking.confirmed events in the background; the loop
	// reconnects on broker failures.
	go queue.StartBookingConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
