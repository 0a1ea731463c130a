package forms

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/workbook"
	"github.com/JaimeStill/formscout/pkg/pagination"
	"github.com/JaimeStill/formscout/pkg/query"
	"github.com/JaimeStill/formscout/pkg/repository"
	"github.com/JaimeStill/formscout/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a form repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "forms"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Form], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "filename")

	filters.Apply(qb)
	qb.OrderByFields(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count forms: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanForm)
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Form, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanForm)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

// Create validates the workbook, uploads it, and registers it. The blob is
// removed again if the insert fails.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Form, error) {
	sheets, err := workbook.Inspect(bytes.NewReader(cmd.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	contentType := cmd.ContentType
	if contentType == "" {
		contentType = ContentTypeXLSX
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload form blob: %w", err)
	}

	insert := `
		INSERT INTO forms(id, filename, content_type, size_bytes, sheet_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)`

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Form, error) {
		if _, err := tx.ExecContext(
			ctx, insert,
			id, cmd.Filename, contentType, int64(len(cmd.Data)), len(sheets), key,
		); err != nil {
			return Form{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("id", id)
		return repository.QueryOne(ctx, tx, q, args, scanForm)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("form created", "id", f.ID, "filename", f.Filename, "sheets", f.SheetCount)
	return &f, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	form, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM forms WHERE id = $1", id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, form.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", form.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("form deleted", "id", id)
	return nil
}

func (r *repo) Fetch(ctx context.Context, id uuid.UUID, dir string) (string, *Form, error) {
	form, err := r.Find(ctx, id)
	if err != nil {
		return "", nil, err
	}

	rc, err := r.storage.Download(ctx, form.StorageKey)
	if err != nil {
		return "", nil, fmt.Errorf("download form blob: %w", err)
	}
	defer rc.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}

	path := filepath.Join(dir, localFilename(form.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("create local workbook: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", nil, fmt.Errorf("write local workbook: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", nil, fmt.Errorf("write local workbook: %w", err)
	}

	r.logger.Debug("form fetched", "id", id, "path", path)
	return path, form, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Form, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Form, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE forms SET status = $1, updated_at = NOW() WHERE id = $2",
			status, id,
		); err != nil {
			return Form{}, err
		}

		q, args := query.NewBuilder(projection).BuildSingle("id", id)
		return repository.QueryOne(ctx, tx, q, args, scanForm)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("form status updated", "id", id, "status", status)
	return &f, nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("forms/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	return url.PathEscape(localFilename(name))
}

func localFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == string(filepath.Separator) {
		return "form.xlsx"
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return name
	}
	return name + ".xlsx"
}
