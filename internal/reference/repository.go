package reference

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListBuildings(ctx context.Context) ([]Building, error) {
	const q = `
SELECT id, name
FROM buildings
ORDER BY name ASC, id ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Building{}
	for rows.Next() {
		var b Building
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	const q = `
SELECT id, name, COALESCE(description, ''), default_rent::text, default_deposit::text
FROM room_types
ORDER BY name ASC, id ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RoomType{}
	for rows.Next() {
		var t RoomType
		var rent, deposit string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &rent, &deposit); err != nil {
			return nil, err
		}
		if t.DefaultRent, err = decimalFromText(rent); err != nil {
			return nil, err
		}
		if t.DefaultDeposit, err = decimalFromText(deposit); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Data(ctx context.Context) (Data, error) {
	buildings, err := r.ListBuildings(ctx)
	if err != nil {
		return Data{}, err
	}
	types, err := r.ListRoomTypes(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{Buildings: buildings, RoomTypes: types}, nil
}

func decimalFromText(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func InsertBuilding(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	const q = `INSERT INTO buildings (name) VALUES ($1) RETURNING id`
	var id int64
	err := tx.QueryRow(ctx, q, name).Scan(&id)
	return id, err
}

func InsertRoomType(ctx context.Context, tx pgx.Tx, t RoomType) (int64, error) {
	const q = `
INSERT INTO room_types (name, description, default_rent, default_deposit)
VALUES ($1, NULLIF($2, ''), $3::numeric, $4::numeric)
RETURNING id
`
	var id int64
	err := tx.QueryRow(ctx, q, t.Name, t.Description, t.DefaultRent.String(), t.DefaultDeposit.String()).Scan(&id)
	return id, err
}
