package recorddb

import "context"

// Repository is the record module's storage contract.
type Repository interface {
	GetRecord(ctx context.Context, id int64) (*Record, error)
	SubmitRecord(ctx context.Context, record *Record) error

	// TransitionStatus atomically moves the record through the lifecycle
	// state machine, returning the record and its previous status. An
	// illegal step fails with ErrInvalidTransition.
	TransitionStatus(ctx context.Context, id int64, to Status) (*Record, Status, error)

	// RecordsForDemon returns all records on a demon, newest first.
	RecordsForDemon(ctx context.Context, demonID int64) ([]Record, error)

	// RecordsForPlayer returns all records by a player, newest first.
	RecordsForPlayer(ctx context.Context, playerID int64) ([]Record, error)
}
