// Package wallet holds step definitions for the wallet pass-delivery protocol.
package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}, headers map[string]string) error
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	StatusCodeIs() int
	ResponseHeader(name string) string
	ResponseBody() []byte
	Serial() string
	DeviceID() string
	SetDeviceID(deviceID string)
	PassType() string
	PassAuthHeader() map[string]string
}

// RegisterSteps registers wallet-protocol step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &walletSteps{tc: tc}

	ctx.Step(`^device "([^"]*)" registers for the pass with push token "([^"]*)"$`, steps.registerDevice)
	ctx.Step(`^device "([^"]*)" registers for the pass without credentials$`, steps.registerWithoutCredentials)
	ctx.Step(`^the device lists its registered serials$`, steps.listSerials)
	ctx.Step(`^the serial list should contain the student serial$`, steps.serialListContainsSerial)
	ctx.Step(`^the serial list should be empty$`, steps.serialListEmpty)
	ctx.Step(`^the device fetches the pass$`, steps.fetchPass)
	ctx.Step(`^the device fetches the pass again with the returned Last-Modified$`, steps.fetchPassConditionally)
	ctx.Step(`^the device unregisters from the pass$`, steps.unregisterDevice)
}

type walletSteps struct {
	tc TestContext

	lastModified string
}

func (s *walletSteps) registrationPath(deviceID string) string {
	return fmt.Sprintf("/v1/devices/%s/registrations/%s/%s", deviceID, s.tc.PassType(), s.tc.Serial())
}

func (s *walletSteps) passPath() string {
	return fmt.Sprintf("/v1/passes/%s/%s", s.tc.PassType(), s.tc.Serial())
}

func (s *walletSteps) registerDevice(deviceID, pushToken string) error {
	s.tc.SetDeviceID(deviceID)
	body := map[string]interface{}{"pushToken": pushToken}
	return s.tc.POST(s.registrationPath(deviceID), body, s.tc.PassAuthHeader())
}

func (s *walletSteps) registerWithoutCredentials(deviceID string) error {
	s.tc.SetDeviceID(deviceID)
	body := map[string]interface{}{"pushToken": "token-no-auth"}
	return s.tc.POST(s.registrationPath(deviceID), body, nil)
}

func (s *walletSteps) listSerials() error {
	path := fmt.Sprintf("/v1/devices/%s/registrations/%s", s.tc.DeviceID(), s.tc.PassType())
	return s.tc.GET(path, nil)
}

func (s *walletSteps) serialList() ([]string, error) {
	var payload struct {
		SerialNumbers []string `json:"serialNumbers"`
	}
	if err := json.Unmarshal(s.tc.ResponseBody(), &payload); err != nil {
		return nil, fmt.Errorf("serial list is not valid JSON: %w", err)
	}
	return payload.SerialNumbers, nil
}

func (s *walletSteps) serialListContainsSerial() error {
	serials, err := s.serialList()
	if err != nil {
		return err
	}
	for _, serial := range serials {
		if serial == s.tc.Serial() {
			return nil
		}
	}
	return fmt.Errorf("serial %s not in list %v", s.tc.Serial(), serials)
}

func (s *walletSteps) serialListEmpty() error {
	serials, err := s.serialList()
	if err != nil {
		return err
	}
	if len(serials) != 0 {
		return fmt.Errorf("expected empty serial list, got %v", serials)
	}
	return nil
}

func (s *walletSteps) fetchPass() error {
	if err := s.tc.GET(s.passPath(), s.tc.PassAuthHeader()); err != nil {
		return err
	}
	s.lastModified = s.tc.ResponseHeader("Last-Modified")
	return nil
}

func (s *walletSteps) fetchPassConditionally() error {
	if s.lastModified == "" {
		return fmt.Errorf("no Last-Modified captured by a previous fetch")
	}
	headers := s.tc.PassAuthHeader()
	headers["If-Modified-Since"] = s.lastModified
	return s.tc.GET(s.passPath(), headers)
}

func (s *walletSteps) unregisterDevice() error {
	return s.tc.DELETE(s.registrationPath(s.tc.DeviceID()), s.tc.PassAuthHeader())
}
