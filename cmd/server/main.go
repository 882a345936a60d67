package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/database"
	"github.com/gymtrack/gymtrack-api/internal/handler"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/queue"
	"github.com/gymtrack/gymtrack-api/internal/repository"
	"github.com/gymtrack/gymtrack-api/internal/router"
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

	users := repository.NewUserRepo(db)
	workouts := repository.NewWorkoutRepo(db)
	sleep := repository.NewSleepRepo(db)
	nutrition := repository.NewNutritionRepo(db)

	ah := handler.NewAuthHandler(cfg, users)
	uh := handler.NewUserHandler(cfg, users)
	wh := handler.NewWorkoutHandler(workouts, true)
	th := handler.NewTrackingHandler(sleep, nutrition)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis is optional: when it is unreachable the rate limiter and the
	// response cache become no-ops and the API serves every request from
	// the database.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, ah, limit)
	router.RegisterProtected(e, cfg.JWTSecret, users, uh, wh, th, limit, cache)

	// Consume workout.completed events in the background; the consumer
	// runs its own reconnect loop for the broker.
	go func() {
		if err := queue.StartWorkoutConsumer(); err != nil {
			log.Printf("workout consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
