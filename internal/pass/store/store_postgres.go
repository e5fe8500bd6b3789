package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"campuspass/internal/pass/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Postgres persists subjects in PostgreSQL. Serial uniqueness is enforced by
// the primary key on pass_subjects.id, which is what makes the allocator's
// read-increment-create sequence safe under concurrency.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subject store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, subject *models.Subject) error {
	const q = `
		INSERT INTO pass_subjects (
			id, campus, first_name, last_name, email, programme, photo_url,
			pass_active, pass_active_at, pass_artifact_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, q,
		subject.ID.String(),
		subject.Campus.String(),
		subject.FirstName,
		subject.LastName,
		subject.Email,
		subject.Programme,
		subject.PhotoURL,
		subject.PassActive,
		nullTime(subject.PassActiveAt),
		subject.PassArtifactURL,
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("subject %s already exists: %w", subject.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, serial id.StudentID) (*models.Subject, error) {
	const q = `
		SELECT id, campus, first_name, last_name, email, programme, photo_url,
		       pass_active, pass_active_at, pass_artifact_url, created_at, updated_at
		FROM pass_subjects
		WHERE id = $1`

	row := s.db.QueryRowContext(ctx, q, serial.String())
	subject, err := scanSubject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subject %s: %w", serial, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return subject, nil
}

func (s *Postgres) MaxSequence(ctx context.Context, campusPrefix string) (int, error) {
	// Serials are fixed-width and zero-padded, so the lexical MAX is also the
	// numeric maximum for the prefix.
	const q = `SELECT MAX(id) FROM pass_subjects WHERE id LIKE $1 || '%'`

	var maxSerial sql.NullString
	if err := s.db.QueryRowContext(ctx, q, campusPrefix).Scan(&maxSerial); err != nil {
		return 0, fmt.Errorf("max sequence for prefix %s: %w", campusPrefix, err)
	}
	if !maxSerial.Valid {
		return 0, nil
	}
	return id.StudentID(maxSerial.String).Sequence(), nil
}

func (s *Postgres) Update(ctx context.Context, subject *models.Subject) error {
	const q = `
		UPDATE pass_subjects
		SET campus = $2, first_name = $3, last_name = $4, email = $5,
		    programme = $6, photo_url = $7, pass_active = $8, pass_active_at = $9,
		    pass_artifact_url = $10, updated_at = $11
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, q,
		subject.ID.String(),
		subject.Campus.String(),
		subject.FirstName,
		subject.LastName,
		subject.Email,
		subject.Programme,
		subject.PhotoURL,
		subject.PassActive,
		nullTime(subject.PassActiveAt),
		subject.PassArtifactURL,
		subject.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subject %s: %w", subject.ID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*models.Subject, error) {
	var (
		subject      models.Subject
		serial       string
		campus       string
		passActiveAt sql.NullTime
	)
	err := row.Scan(
		&serial,
		&campus,
		&subject.FirstName,
		&subject.LastName,
		&subject.Email,
		&subject.Programme,
		&subject.PhotoURL,
		&subject.PassActive,
		&passActiveAt,
		&subject.PassArtifactURL,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	subject.ID = id.StudentID(serial)
	subject.Campus = id.Campus(campus)
	if passActiveAt.Valid {
		subject.PassActiveAt = passActiveAt.Time
	}
	return &subject, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
