package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	id "campuspass/pkg/domain"
)

// TokenKind discriminates the two persisted push-token layouts.
type TokenKind string

const (
	// TokenKindSingle is the default layout: one opaque push token for the
	// row's current device.
	TokenKindSingle TokenKind = "single"
	// TokenKindMulti is the legacy layout: a JSON map of deviceId to push
	// token. New rows are never written in this form; it survives only for
	// data persisted before the discriminator existed.
	TokenKindMulti TokenKind = "multi"
)

// DeviceToken is the push-token payload carried by a registration row.
type DeviceToken struct {
	Kind TokenKind
	// Push holds the opaque token when Kind is single.
	Push string
	// Devices maps deviceId to push token when Kind is multi.
	Devices map[string]string
}

// SingleToken wraps one opaque push token.
func SingleToken(push string) DeviceToken {
	return DeviceToken{Kind: TokenKindSingle, Push: push}
}

// MultiToken wraps a legacy deviceId-to-token map.
func MultiToken(devices map[string]string) DeviceToken {
	return DeviceToken{Kind: TokenKindMulti, Devices: devices}
}

// DecodeDeviceToken reconstructs a token from its stored kind and payload.
// Rows written before the kind column existed carry an empty kind; those are
// sniffed structurally: a payload that parses as a JSON string map is treated
// as the legacy multi layout, anything else as a single opaque token. A multi
// payload that fails to parse also degrades to a single opaque token so a
// corrupt blob never blocks an unregister.
func DecodeDeviceToken(kind, payload string) DeviceToken {
	switch TokenKind(kind) {
	case TokenKindSingle:
		return SingleToken(payload)
	case TokenKindMulti:
		if devices, ok := parseDeviceMap(payload); ok {
			return MultiToken(devices)
		}
		return SingleToken(payload)
	}

	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if devices, ok := parseDeviceMap(trimmed); ok {
			return MultiToken(devices)
		}
	}
	return SingleToken(payload)
}

func parseDeviceMap(payload string) (map[string]string, bool) {
	var devices map[string]string
	if err := json.Unmarshal([]byte(payload), &devices); err != nil {
		return nil, false
	}
	return devices, true
}

// Encode returns the kind and payload in their persisted form.
func (t DeviceToken) Encode() (string, string) {
	if t.Kind == TokenKindMulti {
		payload, err := json.Marshal(t.Devices)
		if err != nil {
			// A string map always marshals; keep the row writable regardless.
			return string(TokenKindMulti), "{}"
		}
		return string(TokenKindMulti), string(payload)
	}
	return string(TokenKindSingle), t.Push
}

// IsMulti reports whether the token carries the legacy map layout.
func (t DeviceToken) IsMulti() bool {
	return t.Kind == TokenKindMulti
}

// RemoveDevice drops deviceID's entry from a legacy multi token. It returns
// the remaining token, the device the row should repoint to, and whether any
// entries remain. The replacement device is the lexicographically smallest
// remaining key, so repeated removals are deterministic.
func (t DeviceToken) RemoveDevice(deviceID string) (DeviceToken, string, bool) {
	if !t.IsMulti() {
		return t, "", false
	}
	remaining := make(map[string]string, len(t.Devices))
	for device, push := range t.Devices {
		if device == deviceID {
			continue
		}
		remaining[device] = push
	}
	if len(remaining) == 0 {
		return DeviceToken{Kind: TokenKindMulti, Devices: remaining}, "", false
	}

	keys := make([]string, 0, len(remaining))
	for device := range remaining {
		keys = append(keys, device)
	}
	sort.Strings(keys)
	return MultiToken(remaining), keys[0], true
}

// Equal reports whether two tokens persist identically.
func (t DeviceToken) Equal(other DeviceToken) bool {
	kind, payload := t.Encode()
	otherKind, otherPayload := other.Encode()
	return kind == otherKind && payload == otherPayload
}

// Registration is one live row in the pass registration directory.
type Registration struct {
	DeviceID  string
	Serial    id.StudentID
	Token     DeviceToken
	CreatedAt time.Time
	UpdatedAt time.Time
}
