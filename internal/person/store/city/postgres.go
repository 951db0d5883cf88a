package city

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"personsdir/internal/person/models"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/platform/tx"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists cities in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) conn(ctx context.Context) execer {
	if dbTx, ok := tx.From(ctx); ok {
		return dbTx
	}
	return s.db
}

// Insert upserts a seed row so startup seeding is idempotent.
func (s *PostgresStore) Insert(ctx context.Context, c *models.City) error {
	if c.ID != 0 {
		_, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO cities (id, name_ka, name_en, location, created_date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.NameKa, c.NameEn, c.Location, c.CreatedDate,
		)
		if err != nil {
			return fmt.Errorf("insert city: %w", err)
		}
		return nil
	}
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO cities (name_ka, name_en, location, created_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		c.NameKa, c.NameEn, c.Location, c.CreatedDate,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert city: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.City, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name_ka, name_en, location, created_date FROM cities WHERE id = $1`, id)
	c, err := scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find city: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.City, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, name_ka, name_en, location, created_date FROM cities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	cities := []*models.City{}
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

func scanCity(row interface{ Scan(...any) error }) (*models.City, error) {
	var c models.City
	if err := row.Scan(&c.ID, &c.NameKa, &c.NameEn, &c.Location, &c.CreatedDate); err != nil {
		return nil, err
	}
	return &c, nil
}
