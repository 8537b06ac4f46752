package fontgroups_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typevault/typevault/internal/audit"
	"github.com/typevault/typevault/internal/fontgroups"
	"github.com/typevault/typevault/internal/fonts"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/pagination"
)

type stubFonts struct {
	fonts.System
	findByIDsFn func(ctx context.Context, ids []uuid.UUID) ([]fonts.Font, error)
}

func (s *stubFonts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]fonts.Font, error) {
	return s.findByIDsFn(ctx, ids)
}

type stubAudit struct {
	mu      sync.Mutex
	entries []string
}

func (a *stubAudit) Record(_ context.Context, op audit.Operation, outcome audit.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, string(op)+":"+string(outcome))
}

func (a *stubAudit) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.entries...)
}

func knownFont(id uuid.UUID) fonts.Font {
	stored := id.String() + ".ttf"
	return fonts.Font{
		ID:       id,
		Name:     "Font-" + id.String()[:8],
		Filename: stored,
		Path:     "/uploads/fonts/" + stored,
	}
}

// resolveKnown resolves only the ids present in known, mirroring the font
// system's silent omission of missing records.
func resolveKnown(known ...fonts.Font) *stubFonts {
	byID := make(map[uuid.UUID]fonts.Font, len(known))
	for _, f := range known {
		byID[f.ID] = f
	}
	return &stubFonts{
		findByIDsFn: func(_ context.Context, ids []uuid.UUID) ([]fonts.Font, error) {
			out := make([]fonts.Font, 0, len(ids))
			for _, id := range ids {
				if f, ok := byID[id]; ok {
					out = append(out, f)
				}
			}
			return out, nil
		},
	}
}

func setupRepo(t *testing.T, fontSys fonts.System) (fontgroups.System, sqlmock.Sqlmock, *stubAudit, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	recorder := &stubAudit{}
	sys := fontgroups.New(
		db,
		fontSys,
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultLimit: 10, MaxLimit: 100},
	)

	return sys, mock, recorder, func() { db.Close() }
}

func groupColumns() []string {
	return []string{"id", "name", "created_by", "fonts", "created_at", "updated_at"}
}

func encodeIDs(t *testing.T, ids []uuid.UUID) []byte {
	t.Helper()
	data, err := json.Marshal(ids)
	require.NoError(t, err)
	return data
}

func groupRow(t *testing.T, g fontgroups.FontGroup) *sqlmock.Rows {
	return sqlmock.NewRows(groupColumns()).
		AddRow(g.ID, g.Name, g.CreatedBy, encodeIDs(t, g.Fonts), g.CreatedAt, g.UpdatedAt)
}

func sampleGroup(ids ...uuid.UUID) fontgroups.FontGroup {
	return fontgroups.FontGroup{
		ID:        uuid.New(),
		Name:      "serif-stack",
		Fonts:     ids,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestGroupCreate(t *testing.T) {
	t.Run("rejects missing fields", func(t *testing.T) {
		sys, _, recorder, done := setupRepo(t, resolveKnown())
		defer done()

		_, err := sys.Create(context.Background(), fontgroups.CreateCommand{})

		var verrs handlers.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
		assert.Empty(t, recorder.recorded())
	})

	t.Run("duplicates collapse below minimum", func(t *testing.T) {
		sys, _, recorder, done := setupRepo(t, resolveKnown())
		defer done()

		id := uuid.New()
		_, err := sys.Create(context.Background(), fontgroups.CreateCommand{
			Name:  "serif-stack",
			Fonts: []uuid.UUID{id, id, id},
		})
		assert.ErrorIs(t, err, fontgroups.ErrGroupSize)
		assert.Empty(t, recorder.recorded())
	})

	t.Run("inserts group and resolves fonts", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		fa, fb := knownFont(a), knownFont(b)

		sys, mock, recorder, done := setupRepo(t, resolveKnown(fa, fb))
		defer done()

		want := sampleGroup(a, b)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fontgroups").
			WithArgs(sqlmock.AnyArg(), want.Name, nil, sqlmock.AnyArg()).
			WillReturnRows(groupRow(t, want))
		mock.ExpectCommit()

		got, err := sys.Create(context.Background(), fontgroups.CreateCommand{
			Name:  want.Name,
			Fonts: []uuid.UUID{a, b},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, got.Fonts)
		assert.Len(t, got.Resolved, 2)
		assert.Equal(t, []string{"CREATE_FONT_GROUP:SUCCESS"}, recorder.recorded())
	})
}

func TestGroupList(t *testing.T) {
	t.Run("keeps stale references while resolving", func(t *testing.T) {
		existing, deleted := uuid.New(), uuid.New()
		sys, mock, _, done := setupRepo(t, resolveKnown(knownFont(existing)))
		defer done()

		g := sampleGroup(existing, deleted)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT g.id, g.name").
			WillReturnRows(groupRow(t, g))
		mock.ExpectCommit()

		result, err := sys.List(context.Background(), pagination.PageRequest{})
		require.NoError(t, err)
		require.Len(t, result.Data, 1)

		group := result.Data[0]
		assert.Equal(t, []uuid.UUID{existing, deleted}, group.Fonts)
		require.Len(t, group.Resolved, 1)
		assert.Equal(t, existing, group.Resolved[0].ID)
	})
}

func TestGroupFind(t *testing.T) {
	t.Run("maps missing row to not found", func(t *testing.T) {
		sys, mock, _, done := setupRepo(t, resolveKnown())
		defer done()

		mock.ExpectQuery("SELECT g.id, g.name").
			WillReturnError(sql.ErrNoRows)

		_, err := sys.Find(context.Background(), uuid.New())
		assert.ErrorIs(t, err, fontgroups.ErrNotFound)
	})
}

func TestGroupUpdate(t *testing.T) {
	t.Run("rejects shrinking below minimum", func(t *testing.T) {
		sys, _, recorder, done := setupRepo(t, resolveKnown())
		defer done()

		_, err := sys.Update(context.Background(), uuid.New(), fontgroups.UpdateCommand{
			Fonts: []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, fontgroups.ErrGroupSize)
		assert.Empty(t, recorder.recorded())
	})

	t.Run("renames without touching references", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		sys, mock, recorder, done := setupRepo(t, resolveKnown(knownFont(a), knownFont(b)))
		defer done()

		existing := sampleGroup(a, b)
		updated := existing
		updated.Name = "sans-stack"
		newName := "sans-stack"

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT g.id, g.name").
			WithArgs(existing.ID).
			WillReturnRows(groupRow(t, existing))
		mock.ExpectQuery("UPDATE fontgroups").
			WithArgs(existing.ID, "sans-stack", sqlmock.AnyArg()).
			WillReturnRows(groupRow(t, updated))
		mock.ExpectCommit()

		got, err := sys.Update(context.Background(), existing.ID, fontgroups.UpdateCommand{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "sans-stack", got.Name)
		assert.Equal(t, []uuid.UUID{a, b}, got.Fonts)
		assert.Equal(t, []string{"UPDATE_FONT_GROUP:SUCCESS"}, recorder.recorded())
	})
}

func TestGroupDelete(t *testing.T) {
	t.Run("deletes group and audits", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		sys, mock, recorder, done := setupRepo(t, resolveKnown(knownFont(a), knownFont(b)))
		defer done()

		existing := sampleGroup(a, b)

		mock.ExpectQuery("SELECT g.id, g.name").
			WithArgs(existing.ID).
			WillReturnRows(groupRow(t, existing))
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM fontgroups").
			WithArgs(existing.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := sys.Delete(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"DELETE_FONT_GROUP:SUCCESS"}, recorder.recorded())
	})
}

func TestFontPresent(t *testing.T) {
	t.Run("reports referencing groups", func(t *testing.T) {
		sys, mock, _, done := setupRepo(t, resolveKnown())
		defer done()

		fontID := uuid.New()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(fontID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		present, err := sys.FontPresent(context.Background(), fontID)
		require.NoError(t, err)
		assert.True(t, present)
	})
}
