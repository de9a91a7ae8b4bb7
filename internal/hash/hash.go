// Package hash implements the gateway's keyed digest protocol: a SHA-512
// over a pipe-separated, order-sensitive field sequence. The forward digest
// authorizes outbound initiation requests; the reverse digest authenticates
// inbound gateway responses. The sequences are positional, so an absent
// field still contributes its separator.
package hash

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
)

// Fields carries the hashed portion of a payment request or response.
// Absent fields stay as empty strings; they are never dropped from the
// sequence.
type Fields struct {
	Key         string
	Txnid       string
	Amount      string
	ProductInfo string
	FirstName   string
	Email       string
	UDF         [domain.UDFCount]string
}

func digest(parts []string) string {
	sum := sha512.Sum512([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Forward computes the outbound digest over the canonical 10-slot layout:
//
//	key|txnid|amount|productinfo|firstname|email|udf1|...|udf10|salt
func Forward(f Fields, salt string) string {
	parts := make([]string, 0, 7+domain.UDFCount)
	parts = append(parts, f.Key, f.Txnid, f.Amount, f.ProductInfo, f.FirstName, f.Email)
	parts = append(parts, f.UDF[:]...)
	parts = append(parts, salt)
	return digest(parts)
}

// ForwardLegacy computes the outbound digest over the historical 5-slot
// layout, kept for verification against older merchant integrations.
func ForwardLegacy(f Fields, salt string) string {
	parts := make([]string, 0, 12)
	parts = append(parts, f.Key, f.Txnid, f.Amount, f.ProductInfo, f.FirstName, f.Email)
	parts = append(parts, f.UDF[:5]...)
	parts = append(parts, salt)
	return digest(parts)
}

// Reverse computes the digest the gateway signs its replies with: the exact
// reverse of the forward sequence, prefixed by the transaction status:
//
//	salt|status|udf10|...|udf1|email|firstname|productinfo|amount|txnid|key
func Reverse(f Fields, status, salt string) string {
	parts := make([]string, 0, 8+domain.UDFCount)
	parts = append(parts, salt, status)
	for i := domain.UDFCount - 1; i >= 0; i-- {
		parts = append(parts, f.UDF[i])
	}
	parts = append(parts, f.Email, f.FirstName, f.ProductInfo, f.Amount, f.Txnid, f.Key)
	return digest(parts)
}

// ReverseLegacy is the 5-slot counterpart of Reverse.
func ReverseLegacy(f Fields, status, salt string) string {
	parts := make([]string, 0, 13)
	parts = append(parts, salt, status)
	for i := 4; i >= 0; i-- {
		parts = append(parts, f.UDF[i])
	}
	parts = append(parts, f.Email, f.FirstName, f.ProductInfo, f.Amount, f.Txnid, f.Key)
	return digest(parts)
}

// Command computes the digest for the gateway's command API
// (key|command|var1|salt), used by refund and status-query calls.
func Command(key, command, var1, salt string) string {
	return digest([]string{key, command, var1, salt})
}

// Verify compares two hex digests case-insensitively in constant time.
func Verify(candidate, expected string) bool {
	c := strings.ToLower(candidate)
	e := strings.ToLower(expected)
	if len(c) != len(e) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c), []byte(e)) == 1
}
