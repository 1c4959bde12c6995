package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ArchiveChecker checks archive storage availability.
type ArchiveChecker interface {
	Ping(ctx context.Context) error
}
