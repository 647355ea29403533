package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

var (
	ErrMissingHeader = errors.New("missing signature header")
	ErrNoSignature   = errors.New("no v1 signature in header")
	ErrStaleEvent    = errors.New("event timestamp outside tolerance")
	ErrMismatch      = errors.New("signature mismatch")
)

// WebhookVerifier authenticates processor webhook payloads using the
// shared signing secret. The header carries a unix timestamp and one or
// more HMAC-SHA256 signatures over "<timestamp>.<payload>":
//
//	Stripe-Signature: t=1712000000,v1=5257a869e7...
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

var _ usecase.SignatureVerifier = (*WebhookVerifier)(nil)

func (v *WebhookVerifier) Configured() bool { return len(v.secret) > 0 }

func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) error {
	if sigHeader == "" {
		return ErrMissingHeader
	}

	var (
		ts   int64
		sigs [][]byte
	)
	for _, part := range strings.Split(sigHeader, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("parse timestamp: %w", err)
			}
			ts = n
		case "v1":
			sig, err := hex.DecodeString(val)
			if err != nil {
				continue // skip undecodable signatures, others may match
			}
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) == 0 {
		return ErrNoSignature
	}

	if v.tolerance > 0 {
		age := v.now().Sub(time.Unix(ts, 0))
		if age > v.tolerance || age < -v.tolerance {
			return ErrStaleEvent
		}
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range sigs {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrMismatch
}
