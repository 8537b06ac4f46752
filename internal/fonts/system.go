package fonts

import (
	"context"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/pagination"
)

// System defines the public contract for font domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// CreateFromUpload stores the uploaded binary under a generated unique
	// name and registers the font record, deriving the display name from
	// the client filename.
	CreateFromUpload(ctx context.Context, cmd UploadCommand) (*Font, error)

	// Create registers a font record for an already stored binary.
	Create(ctx context.Context, cmd CreateCommand) (*Font, error)

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Font], error)
	Find(ctx context.Context, id uuid.UUID) (*Font, error)

	// FindByIDs returns the fonts matching ids. Ids with no matching record
	// are silently omitted.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Font, error)

	// Update applies metadata changes. Ownership is carried via actorID but
	// not enforced.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand, actorID *uuid.UUID) (*Font, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
