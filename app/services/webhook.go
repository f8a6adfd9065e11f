package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// StripeTolerance is how old a signed webhook may be.
const StripeTolerance = 5 * time.Minute

var (
	ErrSignatureMissing = errors.New("missing Stripe-Signature header")
	ErrSignatureInvalid = errors.New("webhook signature does not match")
	ErrSignatureExpired = errors.New("webhook timestamp outside tolerance")
)

// VerifyStripeSignature checks a Stripe-Signature header ("t=...,v1=...")
// against the exact request bytes.
func VerifyStripeSignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return ErrSignatureMissing
	}

	var (
		ts   int64
		sigs [][]byte
	)
	for _, item := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrSignatureInvalid
			}
			ts = n
		case "v1":
			if sig, err := hex.DecodeString(value); err == nil {
				sigs = append(sigs, sig)
			}
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrSignatureInvalid
	}

	signedAt := time.Unix(ts, 0)
	if d := now.Sub(signedAt); d > StripeTolerance || d < -StripeTolerance {
		return ErrSignatureExpired
	}

	expected := StripeSignature(payload, secret, signedAt)
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrSignatureInvalid
}

// StripeSignature computes the v1 signature for payload signed at t.
func StripeSignature(payload []byte, secret string, t time.Time) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// StripeSignatureHeader builds a Stripe-Signature header value.
func StripeSignatureHeader(payload []byte, secret string, t time.Time) string {
	return "t=" + strconv.FormatInt(t.Unix(), 10) + ",v1=" + hex.EncodeToString(StripeSignature(payload, secret, t))
}
