package fontgroups

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/typevault/typevault/internal/audit"
	"github.com/typevault/typevault/internal/fonts"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
)

type repo struct {
	db         *sql.DB
	fonts      fonts.System
	audit      audit.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a font group repository implementing the System interface.
func New(
	db *sql.DB,
	fontSystem fonts.System,
	recorder audit.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		fonts:      fontSystem,
		audit:      recorder,
		logger:     logger.With("system", "fontgroups"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*ResolvedGroup, error) {
	ids, err := validateCreate(cmd)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeFonts(ids)
	if err != nil {
		return nil, fmt.Errorf("encode font references: %w", err)
	}

	q := `
		INSERT INTO fontgroups(id, name, created_by, fonts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, created_by, fonts, created_at, updated_at`

	args := []any{uuid.New(), cmd.Name, cmd.CreatedBy, encoded}

	g, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FontGroup, error) {
		return repository.QueryOne(ctx, tx, q, args, scanGroup)
	})

	r.audit.Record(ctx, audit.OpCreateFontGroup, audit.ForError(err))

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("font group created", "id", g.ID, "name", g.Name)
	return r.resolve(ctx, g)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[ResolvedGroup], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset())

	type listing struct {
		groups []FontGroup
		total  int
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (listing, error) {
		var total int
		if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return listing{}, fmt.Errorf("count font groups: %w", err)
		}

		groups, err := repository.QueryMany(ctx, tx, pageSQL, pageArgs, scanGroup)
		if err != nil {
			return listing{}, fmt.Errorf("query font groups: %w", err)
		}

		return listing{groups: groups, total: total}, nil
	})
	if err != nil {
		return nil, err
	}

	resolved, err := r.resolveAll(ctx, l.groups)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(resolved, l.total, page.Page, page.Limit)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*ResolvedGroup, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	g, err := repository.QueryOne(ctx, r.db, q, args, scanGroup)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return r.resolve(ctx, g)
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*ResolvedGroup, error) {
	if cmd.Fonts != nil {
		deduped := dedupe(cmd.Fonts)
		if len(deduped) < 2 {
			return nil, ErrGroupSize
		}
		cmd.Fonts = deduped
	}

	findSQL, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)

	g, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FontGroup, error) {
		existing, err := repository.QueryOne(ctx, tx, findSQL, findArgs, scanGroup)
		if err != nil {
			return FontGroup{}, err
		}

		if cmd.Name != nil {
			existing.Name = *cmd.Name
		}
		if cmd.Fonts != nil {
			existing.Fonts = cmd.Fonts
		}

		encoded, err := encodeFonts(existing.Fonts)
		if err != nil {
			return FontGroup{}, fmt.Errorf("encode font references: %w", err)
		}

		q := `
			UPDATE fontgroups
			SET name = $2, fonts = $3, updated_at = now()
			WHERE id = $1
			RETURNING id, name, created_by, fonts, created_at, updated_at`

		return repository.QueryOne(ctx, tx, q, []any{id, existing.Name, encoded}, scanGroup)
	})

	r.audit.Record(ctx, audit.OpUpdateFontGroup, audit.ForError(err))

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("font group updated", "id", g.ID)
	return r.resolve(ctx, g)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM fontgroups WHERE id = $1",
			id,
		)
	})

	r.audit.Record(ctx, audit.OpDeleteFontGroup, audit.ForError(err))

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("font group deleted", "id", id)
	return nil
}

func (r *repo) FontPresent(ctx context.Context, fontID uuid.UUID) (bool, error) {
	// jsonb existence operator: matches a top-level array element
	q := "SELECT EXISTS (SELECT 1 FROM fontgroups WHERE fonts ? $1)"

	var present bool
	if err := r.db.QueryRowContext(ctx, q, fontID.String()).Scan(&present); err != nil {
		return false, fmt.Errorf("check font presence: %w", err)
	}
	return present, nil
}

func (r *repo) resolve(ctx context.Context, g FontGroup) (*ResolvedGroup, error) {
	resolved, err := r.fonts.FindByIDs(ctx, g.Fonts)
	if err != nil {
		return nil, err
	}
	return &ResolvedGroup{FontGroup: g, Resolved: resolved}, nil
}

// resolveAll resolves the font references of every group in one bulk lookup.
func (r *repo) resolveAll(ctx context.Context, groups []FontGroup) ([]ResolvedGroup, error) {
	seen := make(map[uuid.UUID]struct{})
	var all []uuid.UUID
	for _, g := range groups {
		for _, id := range g.Fonts {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				all = append(all, id)
			}
		}
	}

	found, err := r.fonts.FindByIDs(ctx, all)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]fonts.Font, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}

	resolved := make([]ResolvedGroup, len(groups))
	for i, g := range groups {
		records := make([]fonts.Font, 0, len(g.Fonts))
		for _, id := range g.Fonts {
			if f, ok := byID[id]; ok {
				records = append(records, f)
			}
		}
		resolved[i] = ResolvedGroup{FontGroup: g, Resolved: records}
	}

	return resolved, nil
}

func validateCreate(cmd CreateCommand) ([]uuid.UUID, error) {
	var errs handlers.ValidationErrors

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, handlers.FieldError{Field: "name", Message: "name is required"})
	}
	if len(cmd.Fonts) == 0 {
		errs = append(errs, handlers.FieldError{Field: "fonts", Message: "fonts are required"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	ids := dedupe(cmd.Fonts)
	if len(ids) < 2 {
		return nil, ErrGroupSize
	}
	return ids, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
