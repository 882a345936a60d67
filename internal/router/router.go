package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/gymtrack/gymtrack-api/internal/handler"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	"github.com/gymtrack/gymtrack-api/internal/repository"
)

// passthrough stands in for an absent optional middleware.
func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func orPassthrough(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return passthrough
	}
	return m
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, which
// load balancers and monitoring systems use to verify the service is up.
// The health check carries no rate limit so probes never get throttled.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login under /auth. Neither route
// requires an existing session; login issues the bearer token the protected
// routes consume. The limiter guards these routes keyed by client IP, since
// no identity exists yet.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/auth", orPassthrough(limit))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterProtected registers every route that requires a valid access
// token. The JWTAuth middleware resolves the token's subject to a live user
// account before anything else runs; the rate limiter comes after it so its
// bucket keys carry the resolved user id rather than "anon". The response
// cache is applied only to the list GETs — item GETs must observe a delete
// immediately, and a cached /users/me would serve stale profiles after an
// update.
func RegisterProtected(e *echo.Echo, secret string, users *repository.UserRepo,
	uh *handler.UserHandler, wh *handler.WorkoutHandler, th *handler.TrackingHandler,
	limit, cache echo.MiddlewareFunc) {

	auth := e.Group("")
	auth.Use(middleware.JWTAuth(secret, users))
	auth.Use(orPassthrough(limit))
	cache = orPassthrough(cache)

	// Profile routes always operate on the caller; there is no /users/:id.
	auth.GET("/users/me", uh.Me)
	auth.PUT("/users/me", uh.UpdateMe)
	auth.DELETE("/users/me", uh.DeleteMe)

	// Workout aggregate. The exercise delete route keys on the exercise id
	// alone; ownership is resolved transitively through its session.
	auth.POST("/workouts", wh.Create)
	auth.GET("/workouts", wh.List, cache)
	auth.GET("/workouts/:id", wh.Get)
	auth.PUT("/workouts/:id", wh.Update)
	auth.DELETE("/workouts/:id", wh.Delete)
	auth.POST("/workouts/:id/exercises", wh.AddExercise)
	auth.DELETE("/workouts/exercises/:id", wh.DeleteExercise)
	auth.PATCH("/workouts/:id/exercises/:exercise_id/complete", wh.ToggleExercise)
	auth.PATCH("/workouts/:id/complete", wh.Complete)

	// Daily tracking logs.
	auth.POST("/tracking/sleep", th.CreateSleep)
	auth.GET("/tracking/sleep", th.ListSleep, cache)
	auth.GET("/tracking/sleep/:id", th.GetSleep)
	auth.PUT("/tracking/sleep/:id", th.UpdateSleep)
	auth.DELETE("/tracking/sleep/:id", th.DeleteSleep)

	auth.POST("/tracking/nutrition", th.CreateNutrition)
	auth.GET("/tracking/nutrition", th.ListNutrition, cache)
	auth.GET("/tracking/nutrition/:id", th.GetNutrition)
	auth.PUT("/tracking/nutrition/:id", th.UpdateNutrition)
	auth.DELETE("/tracking/nutrition/:id", th.DeleteNutrition)
}
