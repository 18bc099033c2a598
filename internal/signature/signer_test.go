package signature_test

import (
	"encoding/base64"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sthaarun/storefront/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	signer := signature.New("8gBm/:&EnhH.1/q", "EPAYTEST")

	sig := signer.Sign("100.00", "11-201-13")
	require.NotEmpty(t, sig)

	// base64 of a SHA-256 digest
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	// deterministic for identical inputs
	assert.Equal(t, sig, signer.Sign("100.00", "11-201-13"))

	// any input change produces a different signature
	assert.NotEqual(t, sig, signer.Sign("100.01", "11-201-13"))
	assert.NotEqual(t, sig, signer.Sign("100.00", "11-201-14"))

	otherSecret := signature.New("different-secret", "EPAYTEST")
	assert.NotEqual(t, sig, otherSecret.Sign("100.00", "11-201-13"))

	otherProduct := signature.New("8gBm/:&EnhH.1/q", "LIVE")
	assert.NotEqual(t, sig, otherProduct.Sign("100.00", "11-201-13"))
}

func TestVerify(t *testing.T) {
	signer := signature.New(gofakeit.Password(true, true, true, true, false, 32), "EPAYTEST")

	totalAmount := "280.00"
	transactionID := gofakeit.UUID()

	sig := signer.Sign(totalAmount, transactionID)

	tests := []struct {
		name          string
		totalAmount   string
		transactionID string
		signature     string
		want          bool
	}{
		{
			name:          "matching signature: ok",
			totalAmount:   totalAmount,
			transactionID: transactionID,
			signature:     sig,
			want:          true,
		},
		{
			name:          "tampered amount: fail",
			totalAmount:   "281.00",
			transactionID: transactionID,
			signature:     sig,
			want:          false,
		},
		{
			name:          "tampered transaction: fail",
			totalAmount:   totalAmount,
			transactionID: gofakeit.UUID(),
			signature:     sig,
			want:          false,
		},
		{
			name:          "garbage signature: fail",
			totalAmount:   totalAmount,
			transactionID: transactionID,
			signature:     "bm90IGEgc2lnbmF0dXJl",
			want:          false,
		},
		{
			name:          "empty signature: fail",
			totalAmount:   totalAmount,
			transactionID: transactionID,
			signature:     "",
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signer.Verify(tt.totalAmount, tt.transactionID, tt.signature))
		})
	}
}
