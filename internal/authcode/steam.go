package authcode

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Steam Guard is defined over HMAC-SHA1
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const steamAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// SteamCodeLength is the number of characters in a Steam Guard code.
const SteamCodeLength = 5

var hexSecretPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// Steam generates Steam Guard mobile authenticator codes. Secrets are
// base64, or 40 hex characters.
type Steam struct {
	Period time.Duration
}

func (s Steam) Generate(secret string, at time.Time) (string, error) {
	key, err := decodeSteamSecret(secret)
	if err != nil {
		return "", err
	}

	period := s.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	msg := make([]byte, 8)
	binary.BigEndian.PutUint64(msg, counterAt(at, period))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	full := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	code := make([]byte, SteamCodeLength)
	for i := range code {
		code[i] = steamAlphabet[full%uint32(len(steamAlphabet))]
		full /= uint32(len(steamAlphabet))
	}
	return string(code), nil
}

func decodeSteamSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSecret)
	}

	if hexSecretPattern.MatchString(secret) {
		key, err := hex.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
		}
		return key, nil
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key, err = base64.RawStdEncoding.DecodeString(secret)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidSecret)
	}
	return key, nil
}
