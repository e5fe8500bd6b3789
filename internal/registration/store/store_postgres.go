package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"campuspass/internal/registration/models"
	id "campuspass/pkg/domain"
	"campuspass/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same store body can
// run standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres persists registration rows in the pass_registrations table.
type Postgres struct {
	db dbtx
}

// NewPostgres returns a store backed by a database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// NewPostgresTx returns a store scoped to an open transaction. For-update
// row locks taken inside the transaction hold until commit, which is what
// serial-scoped read-modify-write cycles rely on.
func NewPostgresTx(tx *sql.Tx) *Postgres {
	return &Postgres{db: tx}
}

const registrationColumns = "device_id, serial_number, token_kind, push_token, created_at, updated_at"

func (s *Postgres) Get(ctx context.Context, deviceID string, serial id.StudentID) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM pass_registrations WHERE device_id = $1 AND serial_number = $2",
		deviceID, serial.String(),
	)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (s *Postgres) ListBySerial(ctx context.Context, serial id.StudentID) ([]models.Registration, error) {
	// FOR UPDATE pins every row for this serial when called inside a
	// transaction; a racing register or unregister on the same serial
	// blocks until commit.
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM pass_registrations WHERE serial_number = $1 ORDER BY updated_at FOR UPDATE",
		serial.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by serial: %w", err)
	}
	return collectRegistrations(rows)
}

func (s *Postgres) ListByDevice(ctx context.Context, deviceID string) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM pass_registrations WHERE device_id = $1 ORDER BY serial_number",
		deviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by device: %w", err)
	}
	return collectRegistrations(rows)
}

func (s *Postgres) Create(ctx context.Context, reg models.Registration) error {
	kind, payload := reg.Token.Encode()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pass_registrations (device_id, serial_number, token_kind, push_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.DeviceID, reg.Serial.String(), kind, payload, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, prevDeviceID string, reg models.Registration) error {
	kind, payload := reg.Token.Encode()
	result, err := s.db.ExecContext(ctx,
		`UPDATE pass_registrations
		 SET device_id = $1, token_kind = $2, push_token = $3, updated_at = $4
		 WHERE device_id = $5 AND serial_number = $6`,
		reg.DeviceID, kind, payload, reg.UpdatedAt, prevDeviceID, reg.Serial.String(),
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, deviceID string, serial id.StudentID) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM pass_registrations WHERE device_id = $1 AND serial_number = $2",
		deviceID, serial.String(),
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		reg           models.Registration
		serial        string
		kind, payload string
	)
	if err := row.Scan(&reg.DeviceID, &serial, &kind, &payload, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return nil, err
	}
	reg.Serial = id.StudentID(serial)
	reg.Token = models.DecodeDeviceToken(kind, payload)
	return &reg, nil
}

func collectRegistrations(rows *sql.Rows) ([]models.Registration, error) {
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	return regs, nil
}
