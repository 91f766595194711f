package scheduling

import (
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/crud"
)

// NewAppointmentHandler serves /appointments. lookups supplies the patient
// and doctor pickers.
func NewAppointmentHandler(appts AppointmentRepository, lookups crud.LookupFunc, logger zerolog.Logger) *crud.Handler[Appointment] {
	return crud.NewHandler(crud.Resource[Appointment]{
		Name:        "appointments",
		Label:       "Appointment",
		Store:       appts,
		Decode:      DecodeAppointment,
		Lookups:     lookups,
		AddedNotice: "Appointment scheduled successfully!",
	}, logger)
}

// NewScheduleHandler serves /doctor_schedules.
func NewScheduleHandler(schedules ScheduleRepository, logger zerolog.Logger) *crud.Handler[Schedule] {
	return crud.NewHandler(crud.Resource[Schedule]{
		Name:   "doctor_schedules",
		Label:  "Doctor schedule",
		Store:  schedules,
		Decode: DecodeSchedule,
	}, logger)
}
