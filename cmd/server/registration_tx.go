package main

import (
	"context"
	"database/sql"
	"time"

	"campuspass/internal/registration"
	regstore "campuspass/internal/registration/store"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/requestcontext"
)

const defaultRegistrationTxTimeout = 5 * time.Second

// registrationPostgresTx runs registration mutations inside a database
// transaction. Combined with the store's FOR UPDATE reads, this serializes
// racing register and unregister calls on the same serial.
type registrationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newRegistrationPostgresTx(db *sql.DB) *registrationPostgresTx {
	return &registrationPostgresTx{db: db}
}

func (t *registrationPostgresTx) RunInTx(ctx context.Context, fn func(store regstore.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRegistrationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// FOR UPDATE cannot serialize two first registrations, since an empty
	// serial has no row to lock. The advisory lock covers that case; it is
	// released automatically at commit or rollback.
	if serial := requestcontext.Serial(ctx); serial != "" {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", serial); err != nil {
			return err
		}
	}

	if err := fn(regstore.NewPostgresTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

var _ registration.Tx = (*registrationPostgresTx)(nil)
