package hash_test

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
)

func sampleFields() hash.Fields {
	return hash.Fields{
		Key:         "K1",
		Txnid:       "TXN1",
		Amount:      "100.00",
		ProductInfo: "Order",
		FirstName:   "John",
		Email:       "j@x.com",
	}
}

func TestForward_MatchesLiteralSequence(t *testing.T) {
	got := hash.Forward(sampleFields(), "S1")

	// 17 fields, 16 pipes; the 10 empty UDF slots still contribute their
	// separators.
	sum := sha512.Sum512([]byte("K1|TXN1|100.00|Order|John|j@x.com|||||||||||S1"))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
	require.Len(t, got, 128)
}

func TestForward_KnownVector(t *testing.T) {
	got := hash.Forward(sampleFields(), "S1")
	require.Equal(t,
		"874ff3c9dc6ad028cdfc20765ccab668b20bff3d0b9b7ce3afdd3f6fbcad16847cd7ede9f162807a56594cf56df0b7f5e604822d0494c230fce7d8cdd5084f80",
		got)
}

func TestReverse_MatchesLiteralSequence(t *testing.T) {
	got := hash.Reverse(sampleFields(), "success", "S1")

	sum := sha512.Sum512([]byte("S1|success|||||||||||j@x.com|John|Order|100.00|TXN1|K1"))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestDigests_AreDeterministic(t *testing.T) {
	f := sampleFields()
	f.UDF = [domain.UDFCount]string{"m1", "order-7"}

	require.Equal(t, hash.Forward(f, "S1"), hash.Forward(f, "S1"))
	require.Equal(t, hash.Reverse(f, "success", "S1"), hash.Reverse(f, "success", "S1"))
}

func TestForward_TamperSensitivity(t *testing.T) {
	base := hash.Forward(sampleFields(), "S1")

	f := sampleFields()
	f.Txnid = "TXN2"
	if hash.Forward(f, "S1") == base {
		t.Fatal("changing txnid did not change the digest")
	}

	// Flipping a single UDF slot from empty to one character must change
	// the output too.
	f = sampleFields()
	f.UDF[6] = "x"
	if hash.Forward(f, "S1") == base {
		t.Fatal("changing udf7 did not change the digest")
	}
}

func TestForward_EmptyAndAbsentUDFAreEquivalent(t *testing.T) {
	implicit := hash.Forward(sampleFields(), "S1")

	f := sampleFields()
	f.UDF = [domain.UDFCount]string{"", "", "", "", "", "", "", "", "", ""}
	require.Equal(t, implicit, hash.Forward(f, "S1"))
}

func TestLegacyLayouts_DropLastFiveSlots(t *testing.T) {
	f := sampleFields()
	f.UDF = [domain.UDFCount]string{"a", "b", "c", "d", "e"}

	sum := sha512.Sum512([]byte("K1|TXN1|100.00|Order|John|j@x.com|a|b|c|d|e|S1"))
	require.Equal(t, hex.EncodeToString(sum[:]), hash.ForwardLegacy(f, "S1"))

	sum = sha512.Sum512([]byte("S1|failure|e|d|c|b|a|j@x.com|John|Order|100.00|TXN1|K1"))
	require.Equal(t, hex.EncodeToString(sum[:]), hash.ReverseLegacy(f, "failure", "S1"))
}

func TestVerify(t *testing.T) {
	d := hash.Forward(sampleFields(), "S1")

	require.True(t, hash.Verify(d, d))
	require.True(t, hash.Verify(d, "874FF3C9DC6AD028CDFC20765CCAB668B20BFF3D0B9B7CE3AFDD3F6FBCAD16847CD7EDE9F162807A56594CF56DF0B7F5E604822D0494C230FCE7D8CDD5084F80"))
	require.False(t, hash.Verify(d, "garbage"))
	require.False(t, hash.Verify("", d))
}
