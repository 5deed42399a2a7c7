package router

import (
	"net/http"

	"github.com/taskquest/backend/internal/auth"
	"github.com/taskquest/backend/internal/catalog"
	"github.com/taskquest/backend/internal/handlers"
	"github.com/taskquest/backend/internal/leaderboard"
	"github.com/taskquest/backend/internal/profile"
)

// Middleware is a standard http middleware.
type Middleware func(http.Handler) http.Handler

// New returns an http.Handler that serves the API under /api/v1.
// authMW authenticates and sets the account into context; affordMW is the
// redemption affordability pre-check chained after authMW.
func New(
	authHandler *auth.Handler,
	taskHandler *handlers.TaskHandler,
	redemptionHandler *handlers.RedemptionHandler,
	catalogHandler *catalog.Handler,
	boardHandler *leaderboard.Handler,
	profileHandler *profile.Handler,
	authMW Middleware,
	affordMW Middleware,
) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	// Public.
	mux.HandleFunc("POST "+base+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+base+"/auth/login", authHandler.Login)

	protected := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Tasks.
	mux.Handle("POST "+base+"/tasks", protected(taskHandler.CreateTask))
	mux.Handle("GET "+base+"/tasks", protected(taskHandler.ListTasks))
	mux.Handle("PATCH "+base+"/tasks/{id}", protected(taskHandler.UpdateTask))
	mux.Handle("POST "+base+"/tasks/{id}/complete", protected(taskHandler.CompleteTask))

	// Rewards catalog.
	mux.Handle("GET "+base+"/rewards", protected(catalogHandler.ListRewards))
	mux.Handle("POST "+base+"/rewards", protected(catalogHandler.CreateReward))
	mux.Handle("PATCH "+base+"/rewards/{id}/availability", protected(catalogHandler.SetAvailability))

	// Redemptions: Auth -> AffordCheck -> handler.
	mux.Handle("POST "+base+"/redemptions", authMW(affordMW(http.HandlerFunc(redemptionHandler.Redeem))))

	// Leaderboard.
	mux.Handle("GET "+base+"/leaderboard", protected(boardHandler.Board))

	// Account/profile.
	mux.Handle("GET "+base+"/account/me", protected(profileHandler.GetMe))
	mux.Handle("PATCH "+base+"/account/settings", protected(profileHandler.UpdateSettings))
	mux.Handle("GET "+base+"/account/redemptions", protected(profileHandler.ListRedemptions))
	mux.Handle("GET "+base+"/account/point-ledger", protected(profileHandler.ListPointLedger))

	return mux
}
