package handler

import (
	id "campuspass/pkg/domain"
	dErrors "campuspass/pkg/domain-errors"
)

// EnrollRequest is the wire shape of POST /admin/v1/subjects.
type EnrollRequest struct {
	Campus    string `json:"campus"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Programme string `json:"programme"`
	PhotoURL  string `json:"photoUrl"`
}

// Validate enforces required fields and the campus allowlist.
func (r EnrollRequest) Validate() error {
	if _, err := id.ParseCampus(r.Campus); err != nil {
		return err
	}
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "firstName is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "lastName is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	return nil
}

// ParsedCampus returns the validated campus value.
func (r EnrollRequest) ParsedCampus() id.Campus {
	campus, _ := id.ParseCampus(r.Campus)
	return campus
}
