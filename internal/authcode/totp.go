package authcode

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP generates RFC 6238 codes from base32 secrets.
type TOTP struct {
	opts totp.ValidateOpts
}

// NewTOTP returns a TOTP generator producing 6 or 8 digit codes.
func NewTOTP(digits int, period time.Duration) (*TOTP, error) {
	var d otp.Digits
	switch digits {
	case 0, 6:
		d = otp.DigitsSix
	case 8:
		d = otp.DigitsEight
	default:
		return nil, fmt.Errorf("unsupported totp digit count %d", digits)
	}
	if period <= 0 {
		period = DefaultPeriod
	}

	return &TOTP{opts: totp.ValidateOpts{
		Period:    uint(period / time.Second),
		Digits:    d,
		Algorithm: otp.AlgorithmSHA1,
	}}, nil
}

func (g *TOTP) Generate(secret string, at time.Time) (string, error) {
	secret = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secret), " ", ""))
	if secret == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSecret)
	}

	code, err := totp.GenerateCodeCustom(secret, at, g.opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return code, nil
}
