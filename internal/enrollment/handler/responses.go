package handler

import (
	"time"

	"campuspass/internal/pass/models"
)

// SubjectResponse is the wire shape of subject payloads on the admin API.
type SubjectResponse struct {
	SerialNumber    string     `json:"serialNumber"`
	Campus          string     `json:"campus"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Programme       string     `json:"programme,omitempty"`
	PhotoURL        string     `json:"photoUrl,omitempty"`
	PassActive      bool       `json:"passActive"`
	PassActiveAt    *time.Time `json:"passActiveAt,omitempty"`
	PassArtifactURL string     `json:"passUrl,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func subjectResponse(subject models.Subject) SubjectResponse {
	resp := SubjectResponse{
		SerialNumber:    subject.ID.String(),
		Campus:          subject.Campus.String(),
		FirstName:       subject.FirstName,
		LastName:        subject.LastName,
		Email:           subject.Email,
		Programme:       subject.Programme,
		PhotoURL:        subject.PhotoURL,
		PassActive:      subject.PassActive,
		PassArtifactURL: subject.PassArtifactURL,
		CreatedAt:       subject.CreatedAt,
	}
	if !subject.PassActiveAt.IsZero() {
		at := subject.PassActiveAt
		resp.PassActiveAt = &at
	}
	return resp
}
