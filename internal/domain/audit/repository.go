package audit

import "context"

type Filter struct {
	EntityType *string
	EntityID   *string
	Action     *string
	ActorID    *string
	Limit      int
}

// AuditRepository appends and lists audit entries. There is no update or
// delete; the trail is immutable.
type AuditRepository interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
