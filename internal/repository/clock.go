package repository

import (
	"context"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/clock"
)

// ServerClock reads the database server's clock so every transition is
// stamped by the store rather than by whichever API replica served it.
func ServerClock(db DBTX) clock.Clock {
	return clock.Func(func(ctx context.Context) (time.Time, error) {
		var now time.Time
		if err := db.QueryRow(ctx, "SELECT clock_timestamp()").Scan(&now); err != nil {
			return time.Time{}, err
		}
		return now, nil
	})
}
