package oauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

const stateTTL = 10 * time.Minute

type statePayload struct {
	Nonce     string `json:"nonce"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// StateSigner issues and verifies the OAuth state parameter as an
// HMAC-SHA256 signed payload, so no server-side state is needed between
// the redirect and the callback.
type StateSigner struct {
	secret []byte
}

func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret)}
}

func (s *StateSigner) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	now := time.Now()
	payload, err := json.Marshal(statePayload{
		Nonce:     hex.EncodeToString(nonce),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(stateTTL).Unix(),
	})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	sig := mac.Sum(nil)

	return base64.URLEncoding.EncodeToString(append(payload, sig...)), nil
}

func (s *StateSigner) Verify(encoded string) error {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return errors.New("invalid state encoding")
	}
	if len(raw) < sha256.Size {
		return errors.New("state too short")
	}

	payload := raw[:len(raw)-sha256.Size]
	sig := raw[len(raw)-sha256.Size:]

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return errors.New("invalid state signature")
	}

	var state statePayload
	if err := json.Unmarshal(payload, &state); err != nil {
		return errors.New("invalid state payload")
	}
	if time.Now().Unix() > state.ExpiresAt {
		return errors.New("state expired")
	}
	return nil
}
