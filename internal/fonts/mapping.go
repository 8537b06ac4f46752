package fonts

import (
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "fonts", "f").
	Project("id", "ID").
	Project("name", "Name").
	Project("filename", "Filename").
	Project("path", "Path").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanFont(s repository.Scanner) (Font, error) {
	var f Font
	err := s.Scan(
		&f.ID,
		&f.Name,
		&f.Filename,
		&f.Path,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
