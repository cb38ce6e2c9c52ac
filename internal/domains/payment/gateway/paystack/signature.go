package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// =====================================================
// WEBHOOK SIGNATURE (x-paystack-signature)
// =====================================================

// SignatureHeader is the header Paystack puts the HMAC in.
const SignatureHeader = "x-paystack-signature"

// GenerateSignature returns hex(HMAC-SHA512(payload, secretKey)).
// payload must be the raw request body, byte for byte.
func GenerateSignature(payload []byte, secretKey string) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. Hex case is ignored.
func VerifySignature(payload []byte, signature, secretKey string) bool {
	if signature == "" || secretKey == "" {
		return false
	}

	expected := GenerateSignature(payload, secretKey)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
