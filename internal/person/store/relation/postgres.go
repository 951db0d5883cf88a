package relation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"personsdir/internal/person/models"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/platform/tx"
)

const uniqueViolation = "23505"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists relation edges in PostgreSQL.
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

func (s *PostgresStore) Insert(ctx context.Context, edge models.PersonRelation) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO person_relations (person_id, related_person_id, type, created_date)
		VALUES ($1, $2, $3, $4)`,
		edge.PersonID, edge.RelatedPersonID, edge.Type.String(), edge.CreatedDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert relation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, personID, relatedPersonID int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		DELETE FROM person_relations WHERE person_id = $1 AND related_person_id = $2`,
		personID, relatedPersonID,
	)
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, personID, relatedPersonID int64) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM person_relations WHERE person_id = $1 AND related_person_id = $2
		)`, personID, relatedPersonID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check relation: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListBySource(ctx context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(ctx, `WHERE person_id = $1`, personID)
}

func (s *PostgresStore) ListByTarget(ctx context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(ctx, `WHERE related_person_id = $1`, personID)
}

func (s *PostgresStore) ListTouching(ctx context.Context, personID int64) ([]models.PersonRelation, error) {
	return s.list(ctx, `WHERE person_id = $1 OR related_person_id = $1`, personID)
}

func (s *PostgresStore) ListByType(ctx context.Context, edgeType models.RelatedType) ([]models.PersonRelation, error) {
	return s.list(ctx, `WHERE type = $1`, edgeType.String())
}

func (s *PostgresStore) ListBySources(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error) {
	if len(personIDs) == 0 {
		return []models.PersonRelation{}, nil
	}
	return s.list(ctx, `WHERE person_id = ANY($1)`, pq.Array(personIDs))
}

func (s *PostgresStore) ListByTargets(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error) {
	if len(personIDs) == 0 {
		return []models.PersonRelation{}, nil
	}
	return s.list(ctx, `WHERE related_person_id = ANY($1)`, pq.Array(personIDs))
}

func (s *PostgresStore) DeleteByPerson(ctx context.Context, personID int64) (int, error) {
	res, err := s.conn(ctx).ExecContext(ctx, `
		DELETE FROM person_relations WHERE person_id = $1 OR related_person_id = $1`, personID)
	if err != nil {
		return 0, fmt.Errorf("delete relations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete relations: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]models.PersonRelation, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT person_id, related_person_id, type, created_date
		FROM person_relations `+where+` ORDER BY person_id, related_person_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	defer rows.Close()

	edges := []models.PersonRelation{}
	for rows.Next() {
		var edge models.PersonRelation
		var edgeType string
		if err := rows.Scan(&edge.PersonID, &edge.RelatedPersonID, &edgeType, &edge.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		edge.Type = models.RelatedType(edgeType)
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relations: %w", err)
	}
	return edges, nil
}
