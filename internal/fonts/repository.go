package fonts

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/typevault/typevault/internal/audit"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
	"github.com/typevault/typevault/pkg/storage"
)

// PublicPathPrefix is the URL prefix font binaries are served from.
const PublicPathPrefix = "/uploads/fonts/"

const cleanupTimeout = 10 * time.Second

type repo struct {
	db         *sql.DB
	storage    storage.System
	audit      audit.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a font repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	recorder audit.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		audit:      recorder,
		logger:     logger.With("system", "fonts"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) CreateFromUpload(ctx context.Context, cmd UploadCommand) (*Font, error) {
	ext := filepath.Ext(cmd.Filename)
	if !strings.EqualFold(ext, Extension) {
		return nil, ErrInvalidFile
	}

	stored := uuid.NewString() + Extension
	key := StorageKey(stored)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload font blob: %w", err)
	}

	font, err := r.Create(ctx, CreateCommand{
		Name:     strings.TrimSuffix(filepath.Base(cmd.Filename), ext),
		Filename: stored,
		Path:     PublicPathPrefix + stored,
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	return font, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Font, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO fonts(id, name, filename, path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, filename, path, created_at, updated_at`

	args := []any{uuid.New(), cmd.Name, cmd.Filename, cmd.Path}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Font, error) {
		return repository.QueryOne(ctx, tx, q, args, scanFont)
	})

	r.audit.Record(ctx, audit.OpCreateFont, audit.ForError(err))

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("font created", "id", f.ID, "name", f.Name)
	return &f, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Font], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset())

	type listing struct {
		fonts []Font
		total int
	}

	// Count and page read from the same snapshot.
	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (listing, error) {
		var total int
		if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return listing{}, fmt.Errorf("count fonts: %w", err)
		}

		fonts, err := repository.QueryMany(ctx, tx, pageSQL, pageArgs, scanFont)
		if err != nil {
			return listing{}, fmt.Errorf("query fonts: %w", err)
		}

		return listing{fonts: fonts, total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(l.fonts, l.total, page.Page, page.Limit)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Font, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFont)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Font, error) {
	if len(ids) == 0 {
		return []Font{}, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereIn("ID", values).
		Build()

	fonts, err := repository.QueryMany(ctx, r.db, q, args, scanFont)
	if err != nil {
		return nil, fmt.Errorf("query fonts by ids: %w", err)
	}
	return fonts, nil
}

func (r *repo) Update(
	ctx context.Context,
	id uuid.UUID,
	cmd UpdateCommand,
	actorID *uuid.UUID,
) (*Font, error) {
	findSQL, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Font, error) {
		existing, err := repository.QueryOne(ctx, tx, findSQL, findArgs, scanFont)
		if err != nil {
			return Font{}, err
		}

		if cmd.Name != nil {
			existing.Name = *cmd.Name
		}
		if cmd.Filename != nil {
			existing.Filename = *cmd.Filename
		}
		if cmd.Path != nil {
			existing.Path = *cmd.Path
		}

		q := `
			UPDATE fonts
			SET name = $2, filename = $3, path = $4, updated_at = now()
			WHERE id = $1
			RETURNING id, name, filename, path, created_at, updated_at`

		return repository.QueryOne(ctx, tx, q, []any{
			id, existing.Name, existing.Filename, existing.Path,
		}, scanFont)
	})

	r.audit.Record(ctx, audit.OpUpdateFont, audit.ForError(err))

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("font updated", "id", f.ID, "actor", actorID)
	return &f, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	font, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM fonts WHERE id = $1",
			id,
		)
	})

	r.audit.Record(ctx, audit.OpDeleteFont, audit.ForError(err))

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// Blob cleanup is best-effort and detached from the request.
	go func(key string) {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()

		if delErr := r.storage.Delete(cleanupCtx, key); delErr != nil {
			r.logger.Warn("blob delete failed after record delete", "key", key, "error", delErr)
		}
	}(StorageKey(font.Filename))

	r.logger.Info("font deleted", "id", id)
	return nil
}

func (c CreateCommand) validate() error {
	var errs handlers.ValidationErrors

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, handlers.FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(c.Filename) == "" {
		errs = append(errs, handlers.FieldError{Field: "filename", Message: "filename is required"})
	}
	if strings.TrimSpace(c.Path) == "" {
		errs = append(errs, handlers.FieldError{Field: "path", Message: "path is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
