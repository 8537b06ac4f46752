package api

import (
	"github.com/typevault/typevault/internal/audit"
	"github.com/typevault/typevault/internal/fontgroups"
	"github.com/typevault/typevault/internal/fonts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Audit      audit.System
	Fonts      fonts.System
	FontGroups fontgroups.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	auditSystem := audit.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	fontSystem := fonts.New(
		runtime.Database.Connection(),
		runtime.Storage,
		auditSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	groupSystem := fontgroups.New(
		runtime.Database.Connection(),
		fontSystem,
		auditSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Audit:      auditSystem,
		Fonts:      fontSystem,
		FontGroups: groupSystem,
	}
}
