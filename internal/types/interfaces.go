package types

import "time"

// Clock abstracts time for testability. The coordinate cache and anything
// else with TTL semantics takes a Clock so tests can advance time
// deterministically instead of sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Logger defines the structured logging interface used throughout the
// pipeline. *slog.Logger satisfies it directly. The HTTP middleware stores a
// request-scoped logger in the context; LoggerFromContext retrieves it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}
