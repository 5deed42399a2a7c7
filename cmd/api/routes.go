package main

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/auth"
	"github.com/taskquest/backend/internal/catalog"
	"github.com/taskquest/backend/internal/config"
	"github.com/taskquest/backend/internal/handlers"
	"github.com/taskquest/backend/internal/leaderboard"
	"github.com/taskquest/backend/internal/ledger"
	"github.com/taskquest/backend/internal/middleware"
	"github.com/taskquest/backend/internal/profile"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/internal/router"
	"github.com/taskquest/backend/internal/services"
)

// buildRouter wires repositories, services and handlers into the API router.
// Middleware chain on protected routes: JWTAuth -> handler, with AffordCheck
// added on POST /redemptions.
func buildRouter(
	pool *pgxpool.Pool,
	cfg *config.Config,
	accountRepo *repository.AccountRepo,
	boardSvc leaderboard.Service,
	enqueueRefresh services.EnqueueRefreshFunc,
	logger *slog.Logger,
) (http.Handler, error) {
	taskRepo := repository.NewTaskRepo(pool)
	rewardRepo := repository.NewRewardRepo(pool)
	redemptionRepo := repository.NewRedemptionRepo(pool)
	ledgerRepo := ledger.NewRepository(pool)

	validator, err := services.NewValidator()
	if err != nil {
		return nil, err
	}

	lifecycleSvc := services.NewLifecycleService(pool, taskRepo, accountRepo, ledgerRepo, enqueueRefresh)
	redemptionSvc := services.NewRedemptionService(pool, rewardRepo, accountRepo, redemptionRepo, ledgerRepo)

	authSvc := auth.NewService(accountRepo, cfg.JWT.Secret, jwtExpiry(cfg))
	authHandler := auth.NewHandler(authSvc, logger)

	catalogSvc := catalog.NewService(rewardRepo)
	catalogHandler := catalog.NewHandler(catalogSvc, validator, logger)

	boardHandler := leaderboard.NewHandler(boardSvc, logger)
	profileHandler := profile.NewHandler(accountRepo, redemptionRepo, ledgerRepo, logger)

	taskHandler := &handlers.TaskHandler{
		TaskRepo:  taskRepo,
		Lifecycle: lifecycleSvc,
		Validator: validator,
		Logger:    logger,
	}
	redemptionHandler := &handlers.RedemptionHandler{
		Redemption: redemptionSvc,
		Logger:     logger,
	}

	authMW := middleware.JWTAuth(authSvc, accountRepo)
	affordMW := middleware.AffordCheck(rewardRepo)

	return router.New(authHandler, taskHandler, redemptionHandler, catalogHandler, boardHandler, profileHandler, authMW, affordMW), nil
}
