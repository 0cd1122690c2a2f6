package routes

import (
	"database/sql"

	"github.com/Radennn1/tutoring-backend/internal/clock"
	"github.com/Radennn1/tutoring-backend/internal/config"
	"github.com/Radennn1/tutoring-backend/internal/repository"
	"github.com/Radennn1/tutoring-backend/internal/repository/sqlite"
	"github.com/Radennn1/tutoring-backend/internal/services"
	sessionws "github.com/Radennn1/tutoring-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Services is the application graph shared by the HTTP routes and the
// background workers.
type Services struct {
	Sessions   *services.SessionService
	Settlement *services.SettlementService
	Reconciler *services.Reconciler
	Hub        *sessionws.Hub
}

func NewPostgresServices(cfg *config.Config, pool *pgxpool.Pool) *Services {
	clk := pickClock(cfg, repository.ServerClock(pool))
	hub := sessionws.NewHub()
	settlement := services.NewSettlementService(repository.NewLedgerRepository(pool), clk)
	sessions := services.NewSessionService(
		repository.NewSessionRepository(pool),
		repository.NewStudentRepository(pool),
		settlement,
		clk,
		hub,
		paymentRules(cfg),
	)
	return &Services{
		Sessions:   sessions,
		Settlement: settlement,
		Reconciler: services.NewReconciler(settlement, cfg.ReconcileInterval),
		Hub:        hub,
	}
}

func NewSQLiteServices(cfg *config.Config, db *sql.DB) *Services {
	return newSQLiteServices(cfg, db, pickClock(cfg, sqlite.ServerClock(db)))
}

func newSQLiteServices(cfg *config.Config, db *sql.DB, clk clock.Clock) *Services {
	hub := sessionws.NewHub()
	settlement := services.NewSettlementService(sqlite.NewLedgerRepository(db), clk)
	sessions := services.NewSessionService(
		sqlite.NewSessionRepository(db),
		sqlite.NewStudentRepository(db),
		settlement,
		clk,
		hub,
		paymentRules(cfg),
	)
	return &Services{
		Sessions:   sessions,
		Settlement: settlement,
		Reconciler: services.NewReconciler(settlement, cfg.ReconcileInterval),
		Hub:        hub,
	}
}

func pickClock(cfg *config.Config, server clock.Clock) clock.Clock {
	if cfg.ClockSource == config.ClockSourceLocal {
		return clock.System{}
	}
	return server
}

func paymentRules(cfg *config.Config) services.PaymentRules {
	rules := services.DefaultPaymentRules()
	if cfg.RequiredDurationMinutes > 0 {
		rules.RequiredDurationMinutes = cfg.RequiredDurationMinutes
	}
	if cfg.PaymentAmount > 0 {
		rules.Amount = cfg.PaymentAmount
	}
	return rules
}
