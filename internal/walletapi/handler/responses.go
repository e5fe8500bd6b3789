package handler

import (
	"strconv"
	"time"

	id "campuspass/pkg/domain"
)

// SerialsResponse is the body of the updated-serials listing.
type SerialsResponse struct {
	SerialNumbers []string `json:"serialNumbers"`
	// LastUpdated is an opaque tag the client echoes back as
	// passesUpdatedSince on its next poll.
	LastUpdated string `json:"lastUpdated"`
}

func serialsResponse(serials []id.StudentID, lastUpdated time.Time) SerialsResponse {
	numbers := make([]string, 0, len(serials))
	for _, serial := range serials {
		numbers = append(numbers, serial.String())
	}
	return SerialsResponse{
		SerialNumbers: numbers,
		LastUpdated:   strconv.FormatInt(lastUpdated.Unix(), 10),
	}
}
