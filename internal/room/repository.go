package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/notcis/apartment-app/internal/audit"
	"github.com/notcis/apartment-app/pkg/db"
)

// Actor recorded on audit events; the admin surface has no user identity.
const auditActor = "admin"

// Repository is the Postgres Store. Each mutation commits together with its
// audit event.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const roomColumns = `id, building_id, floor, number, type_id, base_rent::text, status, remark, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, in Input) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
INSERT INTO rooms (building_id, floor, number, type_id, base_rent, status, remark)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
RETURNING id
`
		if err := tx.QueryRow(ctx, q,
			in.BuildingID, in.Floor, in.Number, in.TypeID, in.BaseRent.String(), string(in.Status), in.Remark,
		).Scan(&id); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, id, audit.ActionRoomCreated, auditActor, map[string]any{
			"buildingId": in.BuildingID,
			"number":     in.Number,
			"status":     in.Status,
		})
	})
	if err != nil {
		return 0, classify("create", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, in Input) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cur, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		const q = `
UPDATE rooms
SET building_id = $2, floor = $3, number = $4, type_id = $5, base_rent = $6::numeric,
    status = $7, remark = $8, updated_at = NOW()
WHERE id = $1
`
		if _, err := tx.Exec(ctx, q,
			id, in.BuildingID, in.Floor, in.Number, in.TypeID, in.BaseRent.String(), string(in.Status), in.Remark,
		); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, id, audit.ActionRoomUpdated, auditActor, map[string]any{
			"from": cur.Status,
			"to":   in.Status,
		})
	})
	return classify("update", err)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `DELETE FROM rooms WHERE id = $1 RETURNING number`
		var number string
		if err := tx.QueryRow(ctx, q, id).Scan(&number); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, id, audit.ActionRoomDeleted, auditActor, map[string]any{"number": number})
	})
	return classify("delete", err)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	rm, err := scanRoom(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, classify("get", err)
	}
	return rm, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Room, error) {
	var (
		where []string
		args  []any
	)
	if filter.BuildingID != 0 {
		args = append(args, filter.BuildingID)
		where = append(where, fmt.Sprintf("building_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT ` + roomColumns + ` FROM rooms`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY building_id ASC, floor ASC, number ASC, id ASC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, classify("list", err)
	}
	defer rows.Close()

	out := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, classify("list", err)
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", err)
	}
	return out, nil
}

func getForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`
	return scanRoom(tx.QueryRow(ctx, q, id))
}

func scanRoom(row pgx.Row) (*Room, error) {
	var (
		rm     Room
		rent   string
		status string
	)
	if err := row.Scan(
		&rm.ID, &rm.BuildingID, &rm.Floor, &rm.Number, &rm.TypeID, &rent, &status, &rm.Remark, &rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(rent)
	if err != nil {
		return nil, fmt.Errorf("scan base_rent %q: %w", rent, err)
	}
	rm.BaseRent = d
	rm.Status = Status(status)
	return &rm, nil
}

// classify maps driver errors onto the Store error contract.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateNumber
	case db.IsForeignKeyViolation(err):
		return &StoreError{Op: op, Err: fmt.Errorf("%w: %s", ErrUnknownReference, db.ConstraintName(err))}
	default:
		return &StoreError{Op: op, Err: err}
	}
}
