// Package builder assembles and signs pass artifacts for wallet clients.
package builder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"campuspass/internal/pass/models"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/requestcontext"
)

// ContentType is the media type served for built pass artifacts.
const ContentType = "application/vnd.campuspass+json"

// Signer turns assembled pass content into the signed artifact a wallet
// accepts. Implementations are opaque to the builder; the production signer
// wraps the institution's signing certificate, the development signer a
// shared key.
type Signer interface {
	Sign(ctx context.Context, payload []byte) ([]byte, error)
}

// passPayload is the content the signer seals. Field names follow the
// wallet-facing convention used by the registration protocol.
type passPayload struct {
	FormatVersion        int    `json:"formatVersion"`
	PassTypeIdentifier   string `json:"passTypeIdentifier"`
	SerialNumber         string `json:"serialNumber"`
	OrganizationName     string `json:"organizationName"`
	Description          string `json:"description"`
	Campus               string `json:"campus"`
	GivenName            string `json:"givenName"`
	FamilyName           string `json:"familyName"`
	Programme            string `json:"programme,omitempty"`
	Photo                string `json:"photo,omitempty"`
	PhotoIsPlaceholder   bool   `json:"photoIsPlaceholder,omitempty"`
	LastUpdated          string `json:"lastUpdated"`
	Barcode              string `json:"barcode"`
	BarcodeFormat        string `json:"barcodeFormat"`
	RelevantDateTimezone string `json:"relevantDateTimezone,omitempty"`
}

// Builder produces signed pass artifacts from pass subjects.
type Builder struct {
	signer     Signer
	photos     *PhotoFetcher
	passTypeID string
	orgName    string
	logger     *slog.Logger
}

// New constructs a pass builder.
func New(signer Signer, photos *PhotoFetcher, passTypeID, orgName string, logger *slog.Logger) *Builder {
	return &Builder{
		signer:     signer,
		photos:     photos,
		passTypeID: passTypeID,
		orgName:    orgName,
		logger:     logger,
	}
}

// Build assembles the pass content for a subject and signs it. A missing or
// unreachable photo degrades to the placeholder; only signing failures fail
// the build.
func (b *Builder) Build(ctx context.Context, subject models.Subject) ([]byte, error) {
	photo, real := b.photos.Fetch(ctx, subject.PhotoURL)

	payload := passPayload{
		FormatVersion:      1,
		PassTypeIdentifier: b.passTypeID,
		SerialNumber:       subject.ID.String(),
		OrganizationName:   b.orgName,
		Description:        "Student campus pass",
		Campus:             subject.Campus.String(),
		GivenName:          subject.FirstName,
		FamilyName:         subject.LastName,
		Programme:          subject.Programme,
		Photo:              base64.StdEncoding.EncodeToString(photo),
		PhotoIsPlaceholder: !real,
		LastUpdated:        subject.LastModified().UTC().Format(time.RFC3339),
		Barcode:            subject.ID.String(),
		BarcodeFormat:      "code128",
	}

	content, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assemble pass content")
	}

	artifact, err := b.signer.Sign(ctx, content)
	if err != nil {
		b.logger.ErrorContext(ctx, "pass signing failed",
			"request_id", requestcontext.RequestID(ctx),
			"serial_number", subject.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign pass")
	}

	b.logger.DebugContext(ctx, "pass built",
		"request_id", requestcontext.RequestID(ctx),
		"serial_number", subject.ID,
		"photo_placeholder", !real,
		"artifact_bytes", len(artifact),
	)
	return artifact, nil
}
