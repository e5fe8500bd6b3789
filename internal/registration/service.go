package registration

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"campuspass/internal/events"
	passmodels "campuspass/internal/pass/models"
	"campuspass/internal/registration/metrics"
	"campuspass/internal/registration/models"
	"campuspass/internal/registration/store"
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/platform/sentinel"
	"campuspass/pkg/requestcontext"
)

// Tx provides a transactional boundary for registration mutations. All
// register and unregister work for one serial runs inside a single
// RunInTx call so racing mutations on the same serial serialize.
type Tx interface {
	RunInTx(ctx context.Context, fn func(store store.Store) error) error
}

// SubjectChecker reports whether a pass subject exists for a serial. The
// pass subject store satisfies it directly.
type SubjectChecker interface {
	FindByID(ctx context.Context, serial id.StudentID) (*passmodels.Subject, error)
}

// RegisterResult reports what a register call did to the directory.
type RegisterResult struct {
	// Created is true when a fresh row was inserted; false when an
	// existing row was consolidated or the call was a no-op.
	Created bool
}

// Service implements the pass registration directory: at most one live
// device registration per serial, with cross-device-tolerant removal.
type Service struct {
	tx       Tx
	reads    store.Store
	subjects SubjectChecker
	events   *events.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// allowPlaceholderTokens lets a register call with an empty push token
	// proceed with a synthesized token. Development mode only; production
	// rejects empty tokens outright.
	allowPlaceholderTokens bool
}

// New constructs the registration directory service. reads must be the same
// underlying store the Tx wraps; it serves the read-only paths that need no
// serial lock.
func New(
	tx Tx,
	reads store.Store,
	subjects SubjectChecker,
	publisher *events.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
	allowPlaceholderTokens bool,
) *Service {
	return &Service{
		tx:                     tx,
		reads:                  reads,
		subjects:               subjects,
		events:                 publisher,
		logger:                 logger,
		metrics:                m,
		allowPlaceholderTokens: allowPlaceholderTokens,
	}
}

// Register records that a device wants update notifications for a serial.
//
// The directory keeps at most one live row per serial: when rows already
// exist, the most recently updated one is kept, the rest are deleted, and
// the kept row is repointed at the calling device and token. Registering a
// second device therefore displaces the first. Calling again with the same
// device and token is a no-op that still reports success.
func (s *Service) Register(ctx context.Context, deviceID string, serial id.StudentID, pushToken string) (*RegisterResult, error) {
	if _, err := s.subjects.FindByID(ctx, serial); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordRegister("rejected")
			return nil, dErrors.New(dErrors.CodeNotFound, "pass not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pass subject")
	}

	if pushToken == "" {
		if !s.allowPlaceholderTokens {
			s.metrics.RecordRegister("rejected")
			return nil, dErrors.New(dErrors.CodeBadRequest, "pushToken is required")
		}
		pushToken = "dev-" + uuid.NewString()
		s.logger.WarnContext(ctx, "empty push token, placeholder synthesized",
			"request_id", requestcontext.RequestID(ctx),
			"device_id", deviceID,
			"serial_number", serial,
		)
	}

	now := requestcontext.Now(ctx)
	result := &RegisterResult{}
	var consolidated int

	ctx = requestcontext.WithSerial(ctx, serial.String())
	err := s.tx.RunInTx(ctx, func(txStore store.Store) error {
		rows, err := txStore.ListBySerial(ctx, serial)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			result.Created = true
			return txStore.Create(ctx, models.Registration{
				DeviceID:  deviceID,
				Serial:    serial,
				Token:     models.SingleToken(pushToken),
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		// Keep the newest row, drop the rest.
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].UpdatedAt.Before(rows[j].UpdatedAt)
		})
		kept := rows[len(rows)-1]
		for _, stale := range rows[:len(rows)-1] {
			if err := txStore.Delete(ctx, stale.DeviceID, stale.Serial); err != nil {
				return err
			}
			consolidated++
		}

		token := models.SingleToken(pushToken)
		if kept.DeviceID == deviceID && kept.Token.Equal(token) {
			return nil
		}

		updated := kept
		updated.DeviceID = deviceID
		updated.Token = token
		updated.UpdatedAt = now
		return txStore.Update(ctx, kept.DeviceID, updated)
	})
	if err != nil {
		s.metrics.RecordRegister("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register device")
	}

	s.metrics.RecordConsolidatedRows(consolidated)
	if result.Created {
		s.metrics.RecordRegister("created")
	} else if consolidated > 0 {
		s.metrics.RecordRegister("consolidated")
	} else {
		s.metrics.RecordRegister("noop")
	}

	s.events.Emit(ctx, events.Event{
		Type:     events.TypeDeviceRegistered,
		Serial:   serial,
		DeviceID: deviceID,
	})
	s.logger.InfoContext(ctx, "device registered",
		"request_id", requestcontext.RequestID(ctx),
		"device_id", deviceID,
		"serial_number", serial,
		"created", result.Created,
		"consolidated_rows", consolidated,
	)
	return result, nil
}

// ListSerials returns every serial whose live row belongs to deviceID.
//
// updatedSince is an opaque tag previously returned in lastUpdated (unix
// seconds); rows updated at or before it are filtered out. An empty or
// unparseable tag returns everything. lastUpdated is the newest updatedAt
// across the returned rows, or the current time when nothing matched.
func (s *Service) ListSerials(ctx context.Context, deviceID string, updatedSince string) ([]id.StudentID, time.Time, error) {
	rows, err := s.reads.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	var since time.Time
	if updatedSince != "" {
		if unix, err := strconv.ParseInt(updatedSince, 10, 64); err == nil {
			since = time.Unix(unix, 0)
		}
	}

	serials := make([]id.StudentID, 0, len(rows))
	var lastUpdated time.Time
	for _, row := range rows {
		if !since.IsZero() && !row.UpdatedAt.After(since) {
			continue
		}
		serials = append(serials, row.Serial)
		if row.UpdatedAt.After(lastUpdated) {
			lastUpdated = row.UpdatedAt
		}
	}
	if lastUpdated.IsZero() {
		lastUpdated = requestcontext.Now(ctx)
	}

	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })
	return serials, lastUpdated, nil
}

// HasRegistration reports whether the live row for serial belongs to this
// exact device.
func (s *Service) HasRegistration(ctx context.Context, deviceID string, serial id.StudentID) (bool, error) {
	_, err := s.reads.Get(ctx, deviceID, serial)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration")
	}
	return true, nil
}

// Unregister removes deviceID's interest in a serial.
//
// The exact row is preferred, but if consolidation displaced the caller the
// serial's surviving row is removed instead. Rows still carrying the legacy
// multi-device token map lose only the caller's entry; the row stays alive,
// repointed at a remaining device, until the map empties.
func (s *Service) Unregister(ctx context.Context, deviceID string, serial id.StudentID) error {
	now := requestcontext.Now(ctx)
	var partial bool

	ctx = requestcontext.WithSerial(ctx, serial.String())
	err := s.tx.RunInTx(ctx, func(txStore store.Store) error {
		rows, err := txStore.ListBySerial(ctx, serial)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return dErrors.New(dErrors.CodeNotFound, "registration not found")
		}

		// Prefer the caller's exact row, else the serial's newest row.
		target := rows[0]
		for _, row := range rows[1:] {
			if row.UpdatedAt.After(target.UpdatedAt) {
				target = row
			}
		}
		for _, row := range rows {
			if row.DeviceID == deviceID {
				target = row
				break
			}
		}

		if target.Token.IsMulti() {
			if _, present := target.Token.Devices[deviceID]; present {
				remaining, next, alive := target.Token.RemoveDevice(deviceID)
				if alive {
					updated := target
					updated.DeviceID = next
					updated.Token = remaining
					updated.UpdatedAt = now
					partial = true
					return txStore.Update(ctx, target.DeviceID, updated)
				}
				return txStore.Delete(ctx, target.DeviceID, target.Serial)
			}
		}

		return txStore.Delete(ctx, target.DeviceID, target.Serial)
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.metrics.RecordUnregister("not_found")
			return err
		}
		s.metrics.RecordUnregister("error")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unregister device")
	}

	if partial {
		s.metrics.RecordUnregister("partial")
	} else {
		s.metrics.RecordUnregister("removed")
	}

	s.events.Emit(ctx, events.Event{
		Type:     events.TypeDeviceUnregistered,
		Serial:   serial,
		DeviceID: deviceID,
	})
	s.logger.InfoContext(ctx, "device unregistered",
		"request_id", requestcontext.RequestID(ctx),
		"device_id", deviceID,
		"serial_number", serial,
		"partial", partial,
	)
	return nil
}
