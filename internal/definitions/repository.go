package definitions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/config"
	"github.com/JaimeStill/formscout/internal/forms"
	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/internal/render"
	"github.com/JaimeStill/formscout/internal/workflow"
	"github.com/JaimeStill/formscout/pkg/pagination"
	"github.com/JaimeStill/formscout/pkg/query"
	"github.com/JaimeStill/formscout/pkg/repository"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type repo struct {
	db         *sql.DB
	rt         *workflow.Runtime
	reasoner   *workflow.AgentReasoner
	forms      forms.System
	runs       *runGuard
	workflow   config.WorkflowConfig
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a definition repository implementing the System interface.
// It internally constructs the workflow runtime from the provided dependencies.
func New(
	db *sql.DB,
	agent gaconfig.AgentConfig,
	wf config.WorkflowConfig,
	capturer render.Capturer,
	logger *slog.Logger,
	pagination pagination.Config,
	forms forms.System,
	prompts prompts.System,
) System {
	reasoner := workflow.NewAgentReasoner(agent)
	rt := &workflow.Runtime{
		Reasoner: reasoner,
		Capturer: capturer,
		Prompts:  prompts,
		Logger:   logger.With("workflow", "detect"),
	}
	return &repo{
		db:         db,
		rt:         rt,
		reasoner:   reasoner,
		forms:      forms,
		runs:       newRunGuard(),
		workflow:   wf,
		logger:     logger.With("system", "definitions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Definition], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "form_filename", "reason")

	filters.Apply(qb)
	qb.OrderByFields(page.Sort)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count definitions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDefinition)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Definition, error) {
	return r.findBy(ctx, r.db, "id", id)
}

func (r *repo) FindByForm(ctx context.Context, formID uuid.UUID) (*Definition, error) {
	return r.findBy(ctx, r.db, "form_id", formID)
}

// Detect downloads the form into {work_dir}/{form_id}, runs the loop there,
// and upserts the definition. The form is marked detected or failed in the
// same transaction. A second Detect for a form already running returns
// ErrInProgress.
func (r *repo) Detect(ctx context.Context, formID uuid.UUID, cmd DetectCommand) (*Definition, error) {
	release, ok := r.runs.acquire(formID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInProgress, formID)
	}
	defer release()

	dir := filepath.Join(r.workflow.WorkDir, formID.String())

	path, _, err := r.forms.Fetch(ctx, formID, dir)
	if err != nil {
		return nil, err
	}

	maxIterations := cmd.MaxIterations
	if maxIterations < 1 {
		maxIterations = r.workflow.MaxIterations
	}

	result, err := workflow.Execute(ctx, r.rt, workflow.Input{
		ExcelFile:     path,
		OutputDir:     dir,
		MaxIterations: maxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("detect form %s: %w", formID, err)
	}

	fields := result.FieldSet.Fields
	if fields == nil {
		fields = []workflow.Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	var errorMessage *string
	if result.ErrorMessage != "" {
		errorMessage = &result.ErrorMessage
	}

	formStatus := forms.StatusDetected
	if result.Status != workflow.StatusComplete {
		formStatus = forms.StatusFailed
	}

	upsertQ := `
		INSERT INTO definitions(
			form_id, status, iterations, fields, reason,
			error_message, model_name, provider_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (form_id) DO UPDATE SET
			status = EXCLUDED.status,
			iterations = EXCLUDED.iterations,
			fields = EXCLUDED.fields,
			reason = EXCLUDED.reason,
			error_message = EXCLUDED.error_message,
			model_name = EXCLUDED.model_name,
			provider_name = EXCLUDED.provider_name,
			detected_at = NOW(),
			validated_by = NULL,
			validated_at = NULL`

	upsertArgs := []any{
		formID,
		result.Status,
		result.Iterations,
		fieldsJSON,
		result.FieldSet.Reason,
		errorMessage,
		r.reasoner.ModelName(),
		r.reasoner.ProviderName(),
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Definition, error) {
		if _, err := tx.ExecContext(ctx, upsertQ, upsertArgs...); err != nil {
			return Definition{}, fmt.Errorf("upsert definition: %w", err)
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE forms SET status = $1, updated_at = NOW() WHERE id = $2",
			formStatus, formID,
		); err != nil {
			return Definition{}, fmt.Errorf("update form status: %w", err)
		}

		def, err := r.findBy(ctx, tx, "form_id", formID)
		if err != nil {
			return Definition{}, err
		}
		return *def, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("form detected",
		"id", d.ID,
		"form_id", formID,
		"status", d.Status,
		"iterations", d.Iterations,
		"fields", len(d.Fields),
	)
	return &d, nil
}

func (r *repo) Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Definition, error) {
	if cmd.ValidatedBy == "" {
		return nil, fmt.Errorf("%w: validated_by is required", ErrInvalid)
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Definition, error) {
		current, err := r.findBy(ctx, tx, "id", id)
		if err != nil {
			return Definition{}, err
		}
		if current.Status != workflow.StatusComplete {
			return Definition{}, ErrInvalidStatus
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE definitions SET validated_by = $1, validated_at = NOW() WHERE id = $2",
			cmd.ValidatedBy, id,
		); err != nil {
			return Definition{}, err
		}

		def, err := r.findBy(ctx, tx, "id", id)
		if err != nil {
			return Definition{}, err
		}
		return *def, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("definition validated", "id", d.ID, "validated_by", cmd.ValidatedBy)
	return &d, nil
}

// Update overwrites the fields with a hand-corrected set. The definition
// becomes COMPLETE and its form detected.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Definition, error) {
	fs, err := cmd.Normalize()
	if err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(fs.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	updateQ := `
		UPDATE definitions
		SET fields = $1, reason = $2, status = $3, error_message = NULL,
			validated_by = $4, validated_at = NOW()
		WHERE id = $5
		RETURNING form_id`

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Definition, error) {
		var formID uuid.UUID
		if err := tx.QueryRowContext(
			ctx, updateQ,
			fieldsJSON, fs.Reason, workflow.StatusComplete, cmd.UpdatedBy, id,
		).Scan(&formID); err != nil {
			return Definition{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE forms SET status = $1, updated_at = NOW() WHERE id = $2",
			forms.StatusDetected, formID,
		); err != nil {
			return Definition{}, fmt.Errorf("update form status: %w", err)
		}

		def, err := r.findBy(ctx, tx, "id", id)
		if err != nil {
			return Definition{}, err
		}
		return *def, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("definition updated",
		"id", d.ID,
		"fields", len(d.Fields),
		"updated_by", cmd.UpdatedBy,
	)
	return &d, nil
}

// Delete removes the definition and returns its form to pending.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	def, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM definitions WHERE id = $1", id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if _, err := r.forms.UpdateStatus(ctx, def.FormID, forms.StatusPending); err != nil {
		r.logger.Warn("form status reset failed", "form_id", def.FormID, "error", err)
	}

	r.logger.Info("definition deleted", "id", id, "form_id", def.FormID)
	return nil
}

func (r *repo) findBy(ctx context.Context, q repository.Querier, field string, value any) (*Definition, error) {
	sqlQ, args := query.NewBuilder(projection).BuildSingle(field, value)

	d, err := repository.QueryOne(ctx, q, sqlQ, args, scanDefinition)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}
