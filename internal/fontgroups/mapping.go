package fontgroups

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "fontgroups", "g").
	Project("id", "ID").
	Project("name", "Name").
	Project("created_by", "CreatedBy").
	Project("fonts", "Fonts").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanGroup(s repository.Scanner) (FontGroup, error) {
	var g FontGroup
	var fontsRaw []byte

	err := s.Scan(
		&g.ID,
		&g.Name,
		&g.CreatedBy,
		&fontsRaw,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}

	if err := json.Unmarshal(fontsRaw, &g.Fonts); err != nil {
		return g, err
	}

	return g, nil
}

func encodeFonts(ids []uuid.UUID) ([]byte, error) {
	return json.Marshal(ids)
}
