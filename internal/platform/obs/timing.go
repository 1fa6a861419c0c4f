package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// SessionIDKey carries the pipeline run's session id through the context.
const SessionIDKey ctxKey = "session_id"

// WithSession tags a context with the run's session id for log correlation.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// Time logs the duration and outcome of one operation:
//
//	defer obs.Time(ctx, "geocode.resolve")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	sessionID, _ := ctx.Value(SessionIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("session=%s op=%s dur=%dms err=%v", sessionID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("session=%s op=%s dur=%dms", sessionID, name, dur.Milliseconds())
	}
}
