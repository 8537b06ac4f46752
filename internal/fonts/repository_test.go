package fonts_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typevault/typevault/internal/audit"
	"github.com/typevault/typevault/internal/fonts"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/lifecycle"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/storage"
)

type stubStorage struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteCh  chan string
}

func (s *stubStorage) Start(*lifecycle.Coordinator) error { return nil }

func (s *stubStorage) Upload(_ context.Context, key string, _ io.Reader, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploaded = append(s.uploaded, key)
	return nil
}

func (s *stubStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	if s.deleteCh != nil {
		s.deleteCh <- key
	}
	return nil
}

func (s *stubStorage) Exists(context.Context, string) (bool, error) { return false, nil }

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

func setupRepo(t *testing.T) (fonts.System, sqlmock.Sqlmock, *stubStorage, *stubAudit, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	store := &stubStorage{}
	recorder := &stubAudit{}
	sys := fonts.New(
		db,
		store,
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultLimit: 10, MaxLimit: 100},
	)

	return sys, mock, store, recorder, func() { db.Close() }
}

func fontColumns() []string {
	return []string{"id", "name", "filename", "path", "created_at", "updated_at"}
}

func fontRow(f fonts.Font) *sqlmock.Rows {
	return sqlmock.NewRows(fontColumns()).
		AddRow(f.ID, f.Name, f.Filename, f.Path, f.CreatedAt, f.UpdatedAt)
}

func storedFont(name string) fonts.Font {
	stored := uuid.NewString() + ".ttf"
	return fonts.Font{
		ID:        uuid.New(),
		Name:      name,
		Filename:  stored,
		Path:      "/uploads/fonts/" + stored,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCreate(t *testing.T) {
	t.Run("rejects empty fields", func(t *testing.T) {
		sys, _, _, recorder, done := setupRepo(t)
		defer done()

		_, err := sys.Create(context.Background(), fonts.CreateCommand{})

		var verrs handlers.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 3)
		assert.Empty(t, recorder.recorded())
	})

	t.Run("inserts record and audits success", func(t *testing.T) {
		sys, mock, _, recorder, done := setupRepo(t)
		defer done()

		want := storedFont("Inter-Regular")

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fonts").
			WithArgs(sqlmock.AnyArg(), want.Name, want.Filename, want.Path).
			WillReturnRows(fontRow(want))
		mock.ExpectCommit()

		got, err := sys.Create(context.Background(), fonts.CreateCommand{
			Name:     want.Name,
			Filename: want.Filename,
			Path:     want.Path,
		})
		require.NoError(t, err)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, []string{"CREATE_FONT:SUCCESS"}, recorder.recorded())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("audits failure on insert error", func(t *testing.T) {
		sys, mock, _, recorder, done := setupRepo(t)
		defer done()

		want := storedFont("Inter-Regular")

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fonts").
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := sys.Create(context.Background(), fonts.CreateCommand{
			Name:     want.Name,
			Filename: want.Filename,
			Path:     want.Path,
		})
		require.Error(t, err)
		assert.Equal(t, []string{"CREATE_FONT:FAILED"}, recorder.recorded())
	})
}

func TestCreateFromUpload(t *testing.T) {
	t.Run("stores blob and derives name from filename", func(t *testing.T) {
		sys, mock, store, _, done := setupRepo(t)
		defer done()

		want := storedFont("Roboto-Bold")

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fonts").
			WithArgs(sqlmock.AnyArg(), "Roboto-Bold", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(fontRow(want))
		mock.ExpectCommit()

		got, err := sys.CreateFromUpload(context.Background(), fonts.UploadCommand{
			Data:        []byte("binary"),
			Filename:    "Roboto-Bold.ttf",
			ContentType: "font/ttf",
		})
		require.NoError(t, err)
		assert.Equal(t, "Roboto-Bold", got.Name)

		require.Len(t, store.uploaded, 1)
		assert.True(t, strings.HasPrefix(store.uploaded[0], "fonts/"))
		assert.True(t, strings.HasSuffix(store.uploaded[0], ".ttf"))
	})

	t.Run("strips uppercase extension", func(t *testing.T) {
		sys, mock, _, _, done := setupRepo(t)
		defer done()

		want := storedFont("SHOUTY")

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fonts").
			WithArgs(sqlmock.AnyArg(), "SHOUTY", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(fontRow(want))
		mock.ExpectCommit()

		_, err := sys.CreateFromUpload(context.Background(), fonts.UploadCommand{
			Data:        []byte("binary"),
			Filename:    "SHOUTY.TTF",
			ContentType: "font/ttf",
		})
		require.NoError(t, err)
	})

	t.Run("rejects non-ttf filename", func(t *testing.T) {
		sys, _, store, _, done := setupRepo(t)
		defer done()

		_, err := sys.CreateFromUpload(context.Background(), fonts.UploadCommand{
			Data:     []byte("binary"),
			Filename: "document.pdf",
		})
		assert.ErrorIs(t, err, fonts.ErrInvalidFile)
		assert.Empty(t, store.uploaded)
	})

	t.Run("compensates blob on insert failure", func(t *testing.T) {
		sys, mock, store, _, done := setupRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO fonts").
			WillReturnError(errors.New("insert failed"))
		mock.ExpectRollback()

		_, err := sys.CreateFromUpload(context.Background(), fonts.UploadCommand{
			Data:        []byte("binary"),
			Filename:    "Roboto-Bold.ttf",
			ContentType: "font/ttf",
		})
		require.Error(t, err)

		require.Len(t, store.uploaded, 1)
		require.Len(t, store.deleted, 1)
		assert.Equal(t, store.uploaded[0], store.deleted[0])
	})
}

func TestList(t *testing.T) {
	t.Run("returns page with exact total pages", func(t *testing.T) {
		sys, mock, _, _, done := setupRepo(t)
		defer done()

		a := storedFont("A")
		b := storedFont("B")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		mock.ExpectQuery("SELECT f.id, f.name").
			WillReturnRows(fontRow(a).AddRow(b.ID, b.Name, b.Filename, b.Path, b.CreatedAt, b.UpdatedAt))
		mock.ExpectCommit()

		result, err := sys.List(context.Background(), pagination.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.Len(t, result.Data, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty collection yields zero pages", func(t *testing.T) {
		sys, mock, _, _, done := setupRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT f.id, f.name").
			WillReturnRows(sqlmock.NewRows(fontColumns()))
		mock.ExpectCommit()

		result, err := sys.List(context.Background(), pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 0, result.TotalPages)
		assert.NotNil(t, result.Data)
		assert.Empty(t, result.Data)
	})
}

func TestFind(t *testing.T) {
	t.Run("maps missing row to not found", func(t *testing.T) {
		sys, mock, _, _, done := setupRepo(t)
		defer done()

		mock.ExpectQuery("SELECT f.id, f.name").
			WillReturnError(sql.ErrNoRows)

		_, err := sys.Find(context.Background(), uuid.New())
		assert.ErrorIs(t, err, fonts.ErrNotFound)
	})
}

func TestFindByIDs(t *testing.T) {
	t.Run("returns empty slice for no ids", func(t *testing.T) {
		sys, _, _, _, done := setupRepo(t)
		defer done()

		got, err := sys.FindByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("omits missing ids", func(t *testing.T) {
		sys, mock, _, _, done := setupRepo(t)
		defer done()

		a := storedFont("A")
		missing := uuid.New()

		mock.ExpectQuery("SELECT f.id, f.name").
			WithArgs(a.ID, missing).
			WillReturnRows(fontRow(a))

		got, err := sys.FindByIDs(context.Background(), []uuid.UUID{a.ID, missing})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a.ID, got[0].ID)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies partial changes in one transaction", func(t *testing.T) {
		sys, mock, _, recorder, done := setupRepo(t)
		defer done()

		existing := storedFont("OldName")
		updated := existing
		updated.Name = "NewName"
		newName := "NewName"

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT f.id, f.name").
			WithArgs(existing.ID).
			WillReturnRows(fontRow(existing))
		mock.ExpectQuery("UPDATE fonts").
			WithArgs(existing.ID, "NewName", existing.Filename, existing.Path).
			WillReturnRows(fontRow(updated))
		mock.ExpectCommit()

		got, err := sys.Update(context.Background(), existing.ID, fonts.UpdateCommand{Name: &newName}, nil)
		require.NoError(t, err)
		assert.Equal(t, "NewName", got.Name)
		assert.Equal(t, []string{"UPDATE_FONT:SUCCESS"}, recorder.recorded())
	})

	t.Run("missing font returns not found", func(t *testing.T) {
		sys, mock, _, recorder, done := setupRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT f.id, f.name").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := sys.Update(context.Background(), uuid.New(), fonts.UpdateCommand{}, nil)
		assert.ErrorIs(t, err, fonts.ErrNotFound)
		assert.Equal(t, []string{"UPDATE_FONT:FAILED"}, recorder.recorded())
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes record then cleans up blob", func(t *testing.T) {
		sys, mock, store, recorder, done := setupRepo(t)
		defer done()

		store.deleteCh = make(chan string, 1)
		existing := storedFont("Inter-Regular")

		mock.ExpectQuery("SELECT f.id, f.name").
			WithArgs(existing.ID).
			WillReturnRows(fontRow(existing))
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM fonts").
			WithArgs(existing.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := sys.Delete(context.Background(), existing.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"DELETE_FONT:SUCCESS"}, recorder.recorded())

		select {
		case key := <-store.deleteCh:
			assert.Equal(t, "fonts/"+existing.Filename, key)
		case <-time.After(2 * time.Second):
			t.Fatal("blob delete was not dispatched")
		}
	})

	t.Run("missing font returns not found without audit", func(t *testing.T) {
		sys, mock, store, recorder, done := setupRepo(t)
		defer done()

		mock.ExpectQuery("SELECT f.id, f.name").
			WillReturnError(sql.ErrNoRows)

		err := sys.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, fonts.ErrNotFound)
		assert.Empty(t, recorder.recorded())
		assert.Empty(t, store.deleted)
	})
}
