package scheduling

import (
	"github.com/hms/hms/internal/platform/crud"
)

// AppointmentRepository defines the persistence interface for appointments.
// List orders by date descending, then time ascending.
type AppointmentRepository interface {
	crud.Store[Appointment]
}

// ScheduleRepository defines the persistence interface for doctor schedules.
type ScheduleRepository interface {
	crud.Store[Schedule]
}
