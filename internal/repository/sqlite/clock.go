package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/clock"
)

// ServerClock reads the time from the database engine, with millisecond
// precision to match the stored timestamps.
func ServerClock(db *sql.DB) clock.Clock {
	return clock.Func(func(ctx context.Context) (time.Time, error) {
		var ms int64
		err := db.QueryRowContext(ctx, `SELECT CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER)`).Scan(&ms)
		if err != nil {
			return time.Time{}, err
		}
		return fromMillis(ms), nil
	})
}
