package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"personsdir/internal/person/models"
	"personsdir/internal/person/query"
	"personsdir/pkg/platform/sentinel"
	"personsdir/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists persons and their phone numbers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// conn returns the transaction carried in ctx when the caller runs inside a
// commit boundary, otherwise the bare pool.
func (s *PostgresStore) conn(ctx context.Context) execer {
	if dbTx, ok := tx.From(ctx); ok {
		return dbTx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Person) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO persons (first_name, last_name, personal_id, birth_date, city_id, gender, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.FirstName, p.LastName, p.PersonalID, p.BirthDate, p.CityID, p.Gender.String(), p.CreatedDate,
	).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert person: %w", err)
	}

	for i := range p.PhoneNumbers {
		p.PhoneNumbers[i].PersonID = p.ID
		if err := s.insertPhone(ctx, &p.PhoneNumbers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) insertPhone(ctx context.Context, n *models.PhoneNumber) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO phone_numbers (person_id, number, type, created_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		n.PersonID, n.Number, n.Type.String(), n.CreatedDate,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert phone number: %w", err)
	}
	return nil
}

// Update rewrites the aggregate row and reconciles phone numbers: known ids
// are updated, zero ids inserted, rows absent from the aggregate deleted.
func (s *PostgresStore) Update(ctx context.Context, p *models.Person) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE persons
		SET first_name = $1, last_name = $2, city_id = $3, updated_date = $4
		WHERE id = $5`,
		p.FirstName, p.LastName, p.CityID, p.UpdatedDate, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	kept := make([]int64, 0, len(p.PhoneNumbers))
	for i := range p.PhoneNumbers {
		n := &p.PhoneNumbers[i]
		if n.ID == 0 {
			n.PersonID = p.ID
			if err := s.insertPhone(ctx, n); err != nil {
				return err
			}
		} else {
			_, err := s.conn(ctx).ExecContext(ctx, `
				UPDATE phone_numbers SET number = $1, type = $2 WHERE id = $3 AND person_id = $4`,
				n.Number, n.Type.String(), n.ID, p.ID,
			)
			if err != nil {
				return fmt.Errorf("update phone number: %w", err)
			}
		}
		kept = append(kept, n.ID)
	}

	_, err = s.conn(ctx).ExecContext(ctx, `
		DELETE FROM phone_numbers WHERE person_id = $1 AND NOT (id = ANY($2))`,
		p.ID, pq.Array(kept),
	)
	if err != nil {
		return fmt.Errorf("prune phone numbers: %w", err)
	}
	return nil
}

// SetImage records the URL the person's uploaded photo is served from.
func (s *PostgresStore) SetImage(ctx context.Context, id int64, image string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE persons SET image = $1 WHERE id = $2`, image, id)
	if err != nil {
		return fmt.Errorf("set person image: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set person image: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the person; owned phone numbers go with it via ON DELETE
// CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const personColumns = `id, first_name, last_name, personal_id, birth_date, city_id, gender, image, created_date, updated_date`

func scanPerson(row interface{ Scan(...any) error }) (*models.Person, error) {
	var p models.Person
	var gender string
	var updated sql.NullTime
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.PersonalID, &p.BirthDate,
		&p.CityID, &gender, &p.Image, &p.CreatedDate, &updated,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = models.Gender(gender)
	if updated.Valid {
		p.UpdatedDate = &updated.Time
	}
	return &p, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByPersonalID(ctx context.Context, personalID string) (*models.Person, error) {
	return s.findOne(ctx, `WHERE personal_id = $1`, strings.TrimSpace(personalID))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Person, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons `+where, arg)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	if err := s.loadPhones(ctx, []*models.Person{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []int64) ([]*models.Person, error) {
	if len(ids) == 0 {
		return []*models.Person{}, nil
	}
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find persons: %w", err)
	}
	defer rows.Close()

	persons, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadPhones(ctx, persons); err != nil {
		return nil, err
	}
	return persons, nil
}

func collectPersons(rows *sql.Rows) ([]*models.Person, error) {
	var persons []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}

func (s *PostgresStore) loadPhones(ctx context.Context, persons []*models.Person) error {
	if len(persons) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(persons))
	byID := make(map[int64]*models.Person, len(persons))
	for _, p := range persons {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, person_id, number, type, created_date
		FROM phone_numbers WHERE person_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load phone numbers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.PhoneNumber
		var numberType string
		if err := rows.Scan(&n.ID, &n.PersonID, &n.Number, &numberType, &n.CreatedDate); err != nil {
			return fmt.Errorf("scan phone number: %w", err)
		}
		n.Type = models.PhoneNumberType(numberType)
		owner := byID[n.PersonID]
		owner.PhoneNumbers = append(owner.PhoneNumbers, n)
	}
	return rows.Err()
}

// sortColumns whitelists ORDER BY targets; the request-facing names never
// reach the SQL text directly.
var sortColumns = map[query.SortField]string{
	query.SortByID:          "id",
	query.SortByFirstName:   "lower(first_name)",
	query.SortByLastName:    "lower(last_name)",
	query.SortByPersonalID:  "personal_id",
	query.SortByBirthDate:   "birth_date",
	query.SortByCreatedDate: "created_date",
}

// List pushes the filter, sort, and paging pipeline into SQL. The window count
// gives the unpaged total without a second round trip.
func (s *PostgresStore) List(ctx context.Context, filter *query.Filter, page *query.Page) (*query.Result, error) {
	filter.Normalize()
	page.Clamp()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SearchTerm != "" {
		pattern := arg("%" + filter.SearchTerm + "%")
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR personal_id LIKE %[1]s)", pattern))
	}
	if filter.Gender != "" {
		where = append(where, "gender = "+arg(filter.Gender.String()))
	}
	if !filter.BirthDateFrom.IsZero() {
		where = append(where, "birth_date >= "+arg(filter.BirthDateFrom))
	}
	if !filter.BirthDateTo.IsZero() {
		where = append(where, "birth_date <= "+arg(filter.BirthDateTo))
	}
	if filter.CityID != 0 {
		where = append(where, "city_id = "+arg(filter.CityID))
	}
	if filter.PhoneNumber != "" || filter.PhoneNumberType != "" {
		sub := "SELECT 1 FROM phone_numbers n WHERE n.person_id = persons.id"
		if filter.PhoneNumber != "" {
			sub += " AND n.number LIKE " + arg("%"+filter.PhoneNumber+"%")
		}
		if filter.PhoneNumberType != "" {
			sub += " AND n.type = " + arg(filter.PhoneNumberType.String())
		}
		where = append(where, "EXISTS ("+sub+")")
	}
	if filter.IDIn != nil {
		ids := make([]int64, 0, len(filter.IDIn))
		for id := range filter.IDIn {
			ids = append(ids, id)
		}
		where = append(where, "id = ANY("+arg(pq.Array(ids))+")")
	}

	sqlText := `SELECT count(*) OVER() AS total, ` + personColumns + ` FROM persons`
	if len(where) > 0 {
		sqlText += " WHERE " + strings.Join(where, " AND ")
	}
	direction := "ASC"
	if page.SortOrder == query.SortDesc {
		direction = "DESC"
	}
	sqlText += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortColumns[page.SortBy], direction)
	sqlText += " LIMIT " + arg(page.Size) + " OFFSET " + arg(page.Offset())

	rows, err := s.conn(ctx).QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	res := &query.Result{Items: []*models.Person{}}
	for rows.Next() {
		var total int
		var p models.Person
		var gender string
		var updated sql.NullTime
		err := rows.Scan(
			&total, &p.ID, &p.FirstName, &p.LastName, &p.PersonalID, &p.BirthDate,
			&p.CityID, &gender, &p.Image, &p.CreatedDate, &updated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.Gender = models.Gender(gender)
		if updated.Valid {
			p.UpdatedDate = &updated.Time
		}
		res.TotalCount = total
		res.Items = append(res.Items, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}

	if len(res.Items) == 0 && (page.Number > 1 || len(where) > 0) {
		// window count is unavailable when the page is empty
		countSQL := `SELECT count(*) FROM persons`
		countArgs := args[:len(args)-2]
		if len(where) > 0 {
			countSQL += " WHERE " + strings.Join(where, " AND ")
		}
		if err := s.conn(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&res.TotalCount); err != nil {
			return nil, fmt.Errorf("count persons: %w", err)
		}
	}

	if err := s.loadPhones(ctx, res.Items); err != nil {
		return nil, err
	}
	return res, nil
}
