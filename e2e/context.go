// Package e2e drives a running pass service over HTTP with godog scenarios.
// Point E2E_BASE_URL at a server started in development mode.
package e2e

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TestContext carries HTTP state between steps of one scenario.
type TestContext struct {
	BaseURL        string
	PassTypeID     string
	PassAuthSecret string
	StaffToken     string

	client *http.Client

	// Last response state, inspected by assertion steps.
	StatusCode int
	Headers    http.Header
	Body       []byte

	serial   string
	deviceID string
}

// NewTestContext builds a context for one scenario.
func NewTestContext(baseURL, passTypeID, passAuthSecret, staffToken string) *TestContext {
	return &TestContext{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		PassTypeID:     passTypeID,
		PassAuthSecret: passAuthSecret,
		StaffToken:     staffToken,
		client:         &http.Client{Timeout: 15 * time.Second},
	}
}

// POST sends a JSON body and records the response.
func (tc *TestContext) POST(path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return tc.do(http.MethodPost, path, reader, headers)
}

// GET records the response for a GET request.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

// DELETE records the response for a DELETE request.
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.do(http.MethodDelete, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.StatusCode = resp.StatusCode
	tc.Headers = resp.Header
	tc.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	return nil
}

// GetResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(tc.Body, &payload); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	value, ok := payload[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", field)
	}
	return value, nil
}

// StatusCodeIs returns the status of the last response.
func (tc *TestContext) StatusCodeIs() int { return tc.StatusCode }

// ResponseBody returns the raw body of the last response.
func (tc *TestContext) ResponseBody() []byte { return tc.Body }

// ResponseHeader returns a header from the last response.
func (tc *TestContext) ResponseHeader(name string) string { return tc.Headers.Get(name) }

// Serial returns the serial number captured by the enrollment steps.
func (tc *TestContext) Serial() string { return tc.serial }

// SetSerial stores the serial number later wallet steps address.
func (tc *TestContext) SetSerial(serial string) { tc.serial = serial }

// DeviceID returns the device identifier the wallet steps registered with.
func (tc *TestContext) DeviceID() string { return tc.deviceID }

// SetDeviceID stores the device identifier for subsequent wallet steps.
func (tc *TestContext) SetDeviceID(deviceID string) { tc.deviceID = deviceID }

// PassType returns the pass type identifier used in wallet URLs.
func (tc *TestContext) PassType() string { return tc.PassTypeID }

// StaffAuthHeader returns the bearer header for the admin enrollment API.
func (tc *TestContext) StaffAuthHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + tc.StaffToken}
}

// PassAuthHeader returns the wallet authorization header for the stored
// serial, using the day-bucketed HMAC scheme the server verifies.
func (tc *TestContext) PassAuthHeader() map[string]string {
	bucket := strconv.FormatInt(time.Now().Unix()/86400, 10)
	mac := hmac.New(sha256.New, []byte(tc.PassAuthSecret))
	mac.Write([]byte(tc.serial + ":" + bucket))
	token := hex.EncodeToString(mac.Sum(nil))
	return map[string]string{"Authorization": "PassAuth " + token}
}
