// Package signature computes the keyed digest that authorizes a payment
// gateway redirect and authenticates the gateway's callback.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SignedFieldNames lists the fields covered by the signature, in signing
// order, as the gateway expects to receive them.
const SignedFieldNames = "total_amount,transaction_uuid,product_code"

type Signer struct {
	secret      []byte
	productCode string
}

func New(secret, productCode string) *Signer {
	return &Signer{
		secret:      []byte(secret),
		productCode: productCode,
	}
}

func (s *Signer) ProductCode() string {
	return s.productCode
}

// Sign returns base64(HMAC-SHA256(secret, message)) over the canonical
// comma-separated field message. Identical inputs always produce the
// identical signature.
func (s *Signer) Sign(totalAmount, transactionID string) string {
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		totalAmount, transactionID, s.productCode)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the supplied signature matches the one this
// service would have produced. Comparison is constant time.
func (s *Signer) Verify(totalAmount, transactionID, signature string) bool {
	expected := s.Sign(totalAmount, transactionID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
