package admin

import (
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/crud"
)

// Handler serves /departments.
type Handler struct {
	*crud.Handler[Department]
}

func NewHandler(depts DepartmentRepository, logger zerolog.Logger) *Handler {
	return &Handler{crud.NewHandler(crud.Resource[Department]{
		Name:   "departments",
		Label:  "Department",
		Store:  depts,
		Decode: DecodeDepartment,
	}, logger)}
}
