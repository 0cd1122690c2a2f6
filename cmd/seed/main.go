// Command seed prepares a store for a manual walkthrough: it activates the
// given students' subscriptions and schedules a session for the tutor.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/config"
	"github.com/Radennn1/tutoring-backend/internal/database"
	"github.com/Radennn1/tutoring-backend/internal/models"
	"github.com/Radennn1/tutoring-backend/internal/repository"
	"github.com/Radennn1/tutoring-backend/internal/repository/sqlite"
	"github.com/Radennn1/tutoring-backend/internal/routes"
)

type studentUpserter interface {
	Upsert(ctx context.Context, input repository.UpsertStudentInput) (*models.Student, error)
}

func main() {
	tutorID := flag.String("tutor", "tutor-1", "tutor id owning the session")
	studentIDs := flag.String("students", "student-1,student-2,student-3", "comma separated student ids to activate")
	startIn := flag.Duration("start-in", 15*time.Minute, "scheduled start relative to now")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var students studentUpserter
	var svc *routes.Services
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := database.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		defer db.Close()
		students = sqlite.NewStudentRepository(db)
		svc = routes.NewSQLiteServices(cfg, db)
	default:
		pool, err := database.ConnectPostgres(ctx, cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		students = repository.NewStudentRepository(pool)
		svc = routes.NewPostgresServices(cfg, pool)
	}

	now := time.Now().UTC()
	for _, id := range strings.Split(*studentIDs, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := students.Upsert(ctx, repository.UpsertStudentInput{
			ID:                 id,
			SubscriptionActive: true,
			UpdatedAt:          now,
		}); err != nil {
			log.Fatalf("Failed to upsert student %s: %v", id, err)
		}
		log.Printf("Student %s has an active subscription", id)
	}

	session, err := svc.Sessions.CreateSession(ctx, *tutorID, now.Add(*startIn))
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	log.Printf("Session %s scheduled at %s for tutor %s", session.ID, session.ScheduledStart.Format(time.RFC3339), session.TutorID)
}
