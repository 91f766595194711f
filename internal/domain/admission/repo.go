package admission

import (
	"context"

	"github.com/hms/hms/internal/platform/crud"
)

// AllotmentRepository defines the persistence interface for room allotments.
type AllotmentRepository interface {
	crud.Store[RoomAllotment]
	// Discharge marks the allotment Discharged and reports whether it existed.
	Discharge(ctx context.Context, id int64) (bool, error)
}
