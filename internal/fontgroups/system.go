package fontgroups

import (
	"context"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/pagination"
)

// System defines the public contract for font group domain operations.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, cmd CreateCommand) (*ResolvedGroup, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[ResolvedGroup], error)
	Find(ctx context.Context, id uuid.UUID) (*ResolvedGroup, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*ResolvedGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FontPresent reports whether any group references the given font.
	FontPresent(ctx context.Context, fontID uuid.UUID) (bool, error)
}
