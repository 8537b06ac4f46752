// Package fonts implements the font record domain for typevault.
// It provides types, data access, and business logic for font file
// upload, metadata management, and blob storage integration. Font
// binaries are opaque: they are stored and served, never parsed.
package fonts

import (
	"time"

	"github.com/google/uuid"
)

// Extension is the only accepted font file suffix, matched case-insensitively.
const Extension = ".ttf"

// StorageKey returns the blob key a stored filename lives under.
func StorageKey(filename string) string {
	return "fonts/" + filename
}

// Font represents a registered font file with its metadata and public path.
type Font struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadCommand carries the raw bytes and client-supplied filename of an
// uploaded font. The filename's extension has already been checked at the
// ingestion boundary.
type UploadCommand struct {
	Data        []byte
	Filename    string
	ContentType string
}

// CreateCommand carries the data needed to register a font record.
// Name is the display name, Filename the generated stored name, and Path
// the public relative path the binary is served from.
type CreateCommand struct {
	Name     string
	Filename string
	Path     string
}

// UpdateCommand carries optional metadata changes. Nil fields are left
// untouched.
type UpdateCommand struct {
	Name     *string `json:"name"`
	Filename *string `json:"filename"`
	Path     *string `json:"path"`
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Font is populated and Error is empty.
type BatchResult struct {
	Font     *Font  `json:"font,omitempty"`
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}
