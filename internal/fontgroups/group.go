// Package fontgroups implements the font group domain for typevault.
// A group is a named collection of at least two distinct fonts, held as
// weak id references: deleting a font leaves its id in any group that
// carries it.
package fontgroups

import (
	"time"

	"github.com/google/uuid"

	"github.com/typevault/typevault/internal/fonts"
)

// FontGroup represents a named collection of font references.
type FontGroup struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	CreatedBy *uuid.UUID  `json:"created_by"`
	Fonts     []uuid.UUID `json:"fonts"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ResolvedGroup pairs a group with the font records its ids resolve to.
// Fonts always carries the complete reference list; Resolved holds only
// the records that still exist.
type ResolvedGroup struct {
	FontGroup
	Resolved []fonts.Font `json:"resolved"`
}

// CreateCommand carries the data needed to create a font group.
type CreateCommand struct {
	Name      string      `json:"name"`
	Fonts     []uuid.UUID `json:"fonts"`
	CreatedBy *uuid.UUID  `json:"created_by"`
}

// UpdateCommand carries optional group changes. A nil Fonts slice leaves
// the reference list untouched.
type UpdateCommand struct {
	Name  *string     `json:"name"`
	Fonts []uuid.UUID `json:"fonts"`
}
