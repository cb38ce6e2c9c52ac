package paystack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_123"}}`)
	secret := "sk_test_123"
	valid := GenerateSignature(body, secret)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    string
		want      bool
	}{
		{"valid", body, valid, secret, true},
		{"upper case hex", body, strings.ToUpper(valid), secret, true},
		{"surrounding whitespace", body, " " + valid + "\n", secret, true},
		{"wrong secret", body, valid, "sk_other", false},
		{"body re-serialized", []byte(`{"data":{"reference":"ref_123"},"event":"charge.success"}`), valid, secret, false},
		{"empty signature", body, "", secret, false},
		{"empty secret", body, valid, "", false},
		{"truncated", body, valid[:64], secret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(tt.payload, tt.signature, tt.secret))
		})
	}
}

func TestGenerateSignature_IsHexSHA512(t *testing.T) {
	sig := GenerateSignature([]byte("{}"), "secret")

	assert.Len(t, sig, 128)
	assert.Equal(t, sig, GenerateSignature([]byte("{}"), "secret"))
}

func TestClientValidateSignature(t *testing.T) {
	client, err := NewClient(&Config{SecretKey: "sk_live_x"})
	assert.NoError(t, err)

	body := []byte(`{"event":"charge.failed"}`)
	assert.True(t, client.ValidateSignature(body, GenerateSignature(body, "sk_live_x")))
	assert.False(t, client.ValidateSignature(body, GenerateSignature(body, "sk_test_x")))
}
