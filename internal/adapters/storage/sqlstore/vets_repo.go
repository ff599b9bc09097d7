package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vet-directory/internal/config"
	"vet-directory/internal/domain/vets"
)

type VetsRepo struct {
	db     *sql.DB
	driver config.Driver
}

func NewVetsRepo(db *sql.DB, driver config.Driver) *VetsRepo {
	return &VetsRepo{db: db, driver: driver}
}

// conn toma una conexión dedicada; el llamador la libera con defer Close
// en todos los caminos, incluido el de error.
func (r *VetsRepo) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return c, nil
}

// List no ordena: el orden es el natural del motor.
func (r *VetsRepo) List(ctx context.Context) ([]vets.Vet, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	rows, err := c.QueryContext(ctx, `SELECT Id, FullName, Email, CreatedAt FROM Vets`)
	if err != nil {
		return nil, fmt.Errorf("list vets: %w", err)
	}
	defer rows.Close()

	out := make([]vets.Vet, 0)
	for rows.Next() {
		var v vets.Vet
		var createdAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.FullName, &v.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("scan vet: %w", err)
		}
		v.CreatedAt = fromNullTime(createdAt)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vets: %w", err)
	}
	return out, nil
}

func (r *VetsRepo) Create(ctx context.Context, v vets.Vet) (int64, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	return r.insert(ctx, c, v)
}

// Update sin filas afectadas no es error (id inexistente = no-op).
func (r *VetsRepo) Update(ctx context.Context, v vets.Vet) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.ExecContext(ctx,
		rebind(r.driver, `UPDATE Vets SET FullName = ?, Email = ? WHERE Id = ?`),
		v.FullName, v.Email, v.ID,
	)
	if err != nil {
		return fmt.Errorf("update vet %d: %w", v.ID, err)
	}
	return nil
}

// Delete sin filas afectadas no es error (id inexistente = no-op).
func (r *VetsRepo) Delete(ctx context.Context, id int64) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.ExecContext(ctx, rebind(r.driver, `DELETE FROM Vets WHERE Id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete vet %d: %w", id, err)
	}
	return nil
}

// SeedIfEmpty corre una sola vez al arrancar, así que count + insert alcanza.
func (r *VetsRepo) SeedIfEmpty(ctx context.Context, v vets.Vet) (bool, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	defer c.Close()

	var n int64
	if err := c.QueryRowContext(ctx, `SELECT COUNT(*) FROM Vets`).Scan(&n); err != nil {
		return false, fmt.Errorf("count vets: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := r.insert(ctx, c, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *VetsRepo) insert(ctx context.Context, c *sql.Conn, v vets.Vet) (int64, error) {
	createdAt := toNullTime(v.CreatedAt)

	// pgx no implementa LastInsertId
	if r.driver == config.DriverPostgres {
		var id int64
		err := c.QueryRowContext(ctx,
			`INSERT INTO Vets (FullName, Email, CreatedAt) VALUES ($1, $2, $3) RETURNING Id`,
			v.FullName, v.Email, createdAt,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert vet: %w", err)
		}
		return id, nil
	}

	res, err := c.ExecContext(ctx,
		`INSERT INTO Vets (FullName, Email, CreatedAt) VALUES (?, ?, ?)`,
		v.FullName, v.Email, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert vet: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert vet: last insert id: %w", err)
	}
	return id, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
