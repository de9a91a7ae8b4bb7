package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
)

func TestStatus_Terminal(t *testing.T) {
	require.False(t, domain.StatusInitiated.Terminal())
	require.False(t, domain.StatusProcessing.Terminal())
	require.True(t, domain.StatusSuccess.Terminal())
	require.True(t, domain.StatusFailed.Terminal())
	require.True(t, domain.StatusHashMismatch.Terminal())
}

func TestMerge_KeepsIdentityAndCreatedAt(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := &domain.Transaction{
		ID:        7,
		Txnid:     "TXN1",
		Status:    domain.StatusInitiated,
		CreatedAt: created,
	}
	incoming := &domain.Transaction{
		Txnid:     "TXN1",
		Status:    domain.StatusSuccess,
		BankRef:   "BR-1",
		UpdatedAt: created.Add(time.Minute),
	}

	merged, conflict := domain.Merge(existing, incoming)
	require.False(t, conflict)
	require.Equal(t, int64(7), merged.ID)
	require.Equal(t, created, merged.CreatedAt)
	require.Equal(t, created.Add(time.Minute), merged.UpdatedAt)
	require.Equal(t, domain.StatusSuccess, merged.Status)
	require.Equal(t, "BR-1", merged.BankRef)
}

func TestMerge_TerminalNeverDowngrades(t *testing.T) {
	existing := &domain.Transaction{Txnid: "TXN1", Status: domain.StatusSuccess}
	incoming := &domain.Transaction{Txnid: "TXN1", Status: domain.StatusProcessing, BankName: "B"}

	merged, conflict := domain.Merge(existing, incoming)
	require.False(t, conflict)
	require.Equal(t, domain.StatusSuccess, merged.Status)
	require.Equal(t, "B", merged.BankName)
}

func TestMerge_ConflictingTerminalStatuses(t *testing.T) {
	existing := &domain.Transaction{Txnid: "TXN1", Status: domain.StatusFailed}
	incoming := &domain.Transaction{Txnid: "TXN1", Status: domain.StatusSuccess}

	merged, conflict := domain.Merge(existing, incoming)
	require.True(t, conflict)
	require.Equal(t, domain.StatusSuccess, merged.Status)
}

func TestMerge_EmptyIncomingFieldsFallBack(t *testing.T) {
	existing := &domain.Transaction{
		Txnid:        "TXN1",
		MerchantID:   "m1",
		Email:        "j@x.com",
		UDF:          [domain.UDFCount]string{"m1", "order-7"},
		Hash:         "abc",
		HashVerified: true,
		Status:       domain.StatusInitiated,
	}
	incoming := &domain.Transaction{Txnid: "TXN1", Status: domain.StatusSuccess}

	merged, _ := domain.Merge(existing, incoming)
	require.Equal(t, "m1", merged.MerchantID)
	require.Equal(t, "j@x.com", merged.Email)
	require.Equal(t, "order-7", merged.UDF[1])
	require.Equal(t, "abc", merged.Hash)
	require.True(t, merged.HashVerified)
}

func TestKindOf(t *testing.T) {
	err := domain.E(domain.KindDuplicate, "txnid already used")
	require.Equal(t, domain.KindDuplicate, domain.KindOf(err))

	wrapped := domain.Wrap(domain.KindGatewayRetry, "gateway unreachable", errors.New("dial tcp: timeout"))
	require.Equal(t, domain.KindGatewayRetry, domain.KindOf(wrapped))
	require.True(t, domain.KindOf(wrapped).Retryable())

	require.Equal(t, domain.KindInternal, domain.KindOf(errors.New("boom")))
}
