package regulation

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	apperrors "normas/pkg/errors"
)

// DedupConstraint is the unique index enforcing the idempotency key at the
// storage layer. Violations of it degrade to duplicate skips.
const DedupConstraint = "regulations_dedup_key"

type Repository interface {
	// ExistingKeys returns the idempotency keys already persisted for the
	// entity, queried once per pipeline run.
	ExistingKeys(ctx context.Context) (map[Key]struct{}, error)
	// Insert writes one regulation row and its component rows in a single
	// transaction, setting reg.ID. A dedup-constraint conflict returns an
	// error matching apperrors.ErrDuplicateKey.
	Insert(ctx context.Context, reg *Regulation) error
	// GetByKey reads back one persisted regulation by its idempotency key.
	GetByKey(ctx context.Context, key Key) (*Regulation, error)
}

type PostgresRepository struct {
	db     *sql.DB
	entity string
}

func NewRepository(db *sql.DB, entity string) Repository {
	return &PostgresRepository{db: db, entity: entity}
}

func (r *PostgresRepository) ExistingKeys(ctx context.Context) (map[Key]struct{}, error) {
	query := `
		SELECT TRIM(title), to_char(created_at, 'YYYY-MM-DD'), COALESCE(external_link, '')
		FROM regulations
		WHERE entity = $1
	`

	rows, err := r.db.QueryContext(ctx, query, r.entity)
	if err != nil {
		return nil, apperrors.ErrStorage.WithMessage("failed to query existing keys").WithCause(err)
	}
	defer rows.Close()

	keys := make(map[Key]struct{})
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Title, &k.CreatedAt, &k.ExternalLink); err != nil {
			return nil, apperrors.ErrStorage.WithMessage("failed to scan existing key").WithCause(err)
		}
		keys[k] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrStorage.WithMessage("rows iteration error").WithCause(err)
	}

	return keys, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, reg *Regulation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.ErrStorage.WithMessage("failed to begin transaction").WithCause(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO regulations
			(created_at, update_at, is_active, title, gtype, entity, external_link, rtype_id, summary, classification_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		reg.CreatedAt,
		reg.UpdateAt,
		reg.IsActive,
		reg.Title,
		reg.GType,
		reg.Entity,
		reg.ExternalLink,
		reg.RTypeID,
		reg.Summary,
		reg.ClassificationID,
	).Scan(&reg.ID)
	if err != nil {
		if isDedupViolation(err) {
			return apperrors.ErrDuplicateKey.WithMessagef("key %s already persisted", reg.Key()).WithCause(err)
		}
		return apperrors.ErrStorage.WithMessage("failed to insert regulation").WithCause(err)
	}

	for _, componentID := range reg.Components {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO regulations_component (regulations_id, components_id) VALUES ($1, $2)`,
			reg.ID, componentID,
		)
		if err != nil {
			return apperrors.ErrStorage.WithMessagef("failed to insert component %d", componentID).WithCause(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.ErrStorage.WithMessage("failed to commit transaction").WithCause(err)
	}

	return nil
}

func (r *PostgresRepository) GetByKey(ctx context.Context, key Key) (*Regulation, error) {
	query := `
		SELECT id, to_char(created_at, 'YYYY-MM-DD'), update_at, is_active, title, gtype, entity,
		       external_link, rtype_id, summary, classification_id
		FROM regulations
		WHERE TRIM(title) = $1 AND created_at = $2::date AND COALESCE(external_link, '') = $3
	`

	var reg Regulation
	err := r.db.QueryRowContext(ctx, query, key.Title, key.CreatedAt, key.ExternalLink).Scan(
		&reg.ID,
		&reg.CreatedAt,
		&reg.UpdateAt,
		&reg.IsActive,
		&reg.Title,
		&reg.GType,
		&reg.Entity,
		&reg.ExternalLink,
		&reg.RTypeID,
		&reg.Summary,
		&reg.ClassificationID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrStorage.WithMessage("failed to read regulation by key").WithCause(err)
	}

	compRows, err := r.db.QueryContext(ctx,
		`SELECT components_id FROM regulations_component WHERE regulations_id = $1 ORDER BY id`,
		reg.ID,
	)
	if err != nil {
		return nil, apperrors.ErrStorage.WithMessage("failed to read components").WithCause(err)
	}
	defer compRows.Close()

	for compRows.Next() {
		var componentID int64
		if err := compRows.Scan(&componentID); err != nil {
			return nil, apperrors.ErrStorage.WithMessage("failed to scan component").WithCause(err)
		}
		reg.Components = append(reg.Components, componentID)
	}
	if err := compRows.Err(); err != nil {
		return nil, apperrors.ErrStorage.WithMessage("rows iteration error").WithCause(err)
	}

	return &reg, nil
}

// isDedupViolation reports whether err is a unique violation on the
// idempotency constraint, as opposed to some other constraint failing.
func isDedupViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	// Constraint name may be empty on some server versions; a bare unique
	// violation on this table still means the dedup index fired, since it
	// is the only unique constraint besides the primary key.
	return pqErr.Constraint == "" || pqErr.Constraint == DedupConstraint
}
