// Package enrollment holds step definitions for the staff enrollment API.
package enrollment

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	StatusCodeIs() int
	Serial() string
	SetSerial(serial string)
	StaffAuthHeader() map[string]string
}

// RegisterSteps registers enrollment-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &enrollmentSteps{tc: tc}

	ctx.Step(`^a student "([^"]*)" "([^"]*)" is enrolled at campus "([^"]*)"$`, steps.enrollStudent)
	ctx.Step(`^a pass is issued for the student$`, steps.issuePass)
	ctx.Step(`^I enroll a student at campus "([^"]*)"$`, steps.enrollAtCampus)
}

type enrollmentSteps struct {
	tc TestContext
}

func (s *enrollmentSteps) enrollStudent(firstName, lastName, campus string) error {
	body := map[string]interface{}{
		"campus":    campus,
		"firstName": firstName,
		"lastName":  lastName,
		"email":     strings.ToLower(fmt.Sprintf("%s.%s@example.ac.uk", firstName, lastName)),
	}
	if err := s.tc.POST("/admin/v1/subjects", body, s.tc.StaffAuthHeader()); err != nil {
		return err
	}
	if s.tc.StatusCodeIs() != 201 {
		return fmt.Errorf("enrollment failed with status %d", s.tc.StatusCodeIs())
	}
	serial, err := s.tc.GetResponseField("serialNumber")
	if err != nil {
		return err
	}
	str, ok := serial.(string)
	if !ok || str == "" {
		return fmt.Errorf("enrollment returned no serial number")
	}
	s.tc.SetSerial(str)
	return nil
}

func (s *enrollmentSteps) enrollAtCampus(campus string) error {
	return s.enrollStudent("Test", "Student", campus)
}

func (s *enrollmentSteps) issuePass() error {
	if err := s.tc.POST("/admin/v1/subjects/"+s.tc.Serial()+"/pass", nil, s.tc.StaffAuthHeader()); err != nil {
		return err
	}
	if s.tc.StatusCodeIs() != 200 {
		return fmt.Errorf("pass issue failed with status %d", s.tc.StatusCodeIs())
	}
	return nil
}
