package builder

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
)

// signedEnvelope is the artifact layout the development signer emits: the
// content plus a keyed digest a conformance harness can recompute.
type signedEnvelope struct {
	Content   string `json:"content"`
	Signature string `json:"signature"`
	Algorithm string `json:"algorithm"`
}

// DevSigner seals pass content with an HMAC over a shared key. It stands in
// for the certificate-backed signer in development and tests; artifacts it
// produces are verifiable but carry no trust chain.
type DevSigner struct {
	key []byte
}

// NewDevSigner builds a development signer over a shared key.
func NewDevSigner(key string) *DevSigner {
	return &DevSigner{key: []byte(key)}
}

func (s *DevSigner) Sign(_ context.Context, payload []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)

	return json.Marshal(signedEnvelope{
		Content:   base64.StdEncoding.EncodeToString(payload),
		Signature: hex.EncodeToString(mac.Sum(nil)),
		Algorithm: "HMAC-SHA256",
	})
}
