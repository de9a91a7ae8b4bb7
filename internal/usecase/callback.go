package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/metrics"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
)

type ingestorStore interface {
	GetMerchant(ctx context.Context, id string) (*domain.Merchant, error)
	Upsert(ctx context.Context, incoming *domain.Transaction) (*domain.Transaction, bool, error)
}

// Ingestor authenticates and persists gateway-originated callbacks, both the
// asynchronous webhook and the browser-redirect post. Gateway delivery is
// at-least-once, so everything here is safe to re-apply.
type Ingestor struct {
	Store             ingestorStore
	Logger            logging.Logger
	Metrics           *metrics.Counters
	DefaultMerchantID string
	Now               func() time.Time
}

// CallbackInput is the field bag a gateway callback carries, as parsed from
// the form post. Raw holds the payload verbatim for audit.
type CallbackInput struct {
	Txnid        string
	Status       string
	Amount       string
	ProductInfo  string
	FirstName    string
	Email        string
	Phone        string
	UDF          [domain.UDFCount]string
	Hash         string
	BankRef      string
	BankName     string
	CardType     string
	GatewayTxnID string
	ErrorMessage string
	Raw          string
}

func (ig *Ingestor) now() time.Time {
	if ig.Now != nil {
		return ig.Now()
	}
	return time.Now()
}

// Ingest verifies the reverse hash and upserts the transaction. A failed
// verification still persists every field under HASH_MISMATCH: the evidence
// of possible tampering is kept inspectable, never discarded. The returned
// transaction's HashVerified field tells redirect handlers whether to flag
// suspicious activity.
func (ig *Ingestor) Ingest(ctx context.Context, in CallbackInput) (*domain.Transaction, error) {
	if in.Txnid == "" {
		return nil, domain.E(domain.KindValidation, "missing txnid")
	}

	merchant, err := ig.resolveMerchant(ctx, in)
	if err != nil {
		// A store fault is not evidence of tampering; report it so the
		// gateway re-delivers instead of recording a mismatch.
		return nil, domain.Wrap(domain.KindInternal, "merchant lookup", err)
	}

	amountMinor, err := hash.ParseAmount(in.Amount)
	if err != nil {
		amountMinor = 0
	}

	verified := false
	if merchant != nil {
		verified = ig.verify(merchant, in)
	}

	status := mapGatewayStatus(in.Status)
	if !verified {
		status = domain.StatusHashMismatch
	}

	now := ig.now()
	incoming := &domain.Transaction{
		Txnid:        in.Txnid,
		AmountMinor:  amountMinor,
		ProductInfo:  in.ProductInfo,
		FirstName:    in.FirstName,
		Email:        in.Email,
		Phone:        in.Phone,
		UDF:          in.UDF,
		Status:       status,
		Hash:         in.Hash,
		HashVerified: verified,
		BankRef:      in.BankRef,
		BankName:     in.BankName,
		CardType:     in.CardType,
		GatewayTxnID: in.GatewayTxnID,
		RawResponse:  in.Raw,
		ErrorMessage: in.ErrorMessage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if merchant != nil {
		incoming.MerchantID = merchant.ID
	}

	ig.Metrics.IncCallback()

	merged, conflict, err := ig.Store.Upsert(ctx, incoming)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "persist callback", err)
	}

	if conflict {
		// Either the gateway is misbehaving or someone is replaying
		// callbacks with altered outcomes; both deserve attention.
		ig.Metrics.IncTerminalConflict()
		ig.Logger.Error("terminal status conflict, last write wins", map[string]any{
			"txnid":      merged.Txnid,
			"new_status": string(status),
		})
	}

	if !verified {
		ig.Metrics.IncHashMismatch()
		ig.Logger.Error("callback hash mismatch", map[string]any{
			"txnid": in.Txnid,
		})
	} else {
		ig.Logger.Info("callback ingested", map[string]any{
			"txnid":  in.Txnid,
			"status": string(merged.Status),
		})
	}

	return merged, nil
}

// resolveMerchant finds the salt to verify against. UDF1 conventionally
// carries the merchant id on the round-trip; fall back to the configured
// default when the slot is empty or unknown. A nil merchant with nil error
// means no salt exists for this callback; any other error is a store fault
// the caller must surface, not swallow.
func (ig *Ingestor) resolveMerchant(ctx context.Context, in CallbackInput) (*domain.Merchant, error) {
	if in.UDF[0] != "" {
		m, err := ig.Store.GetMerchant(ctx, in.UDF[0])
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	m, err := ig.Store.GetMerchant(ctx, ig.DefaultMerchantID)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// verify re-derives the reverse digest the gateway signed the reply with.
// The canonical 10-slot layout is tried first, then the legacy 5-slot one
// that older integrations still send.
func (ig *Ingestor) verify(m *domain.Merchant, in CallbackInput) bool {
	f := hash.Fields{
		Key:         m.Key,
		Txnid:       in.Txnid,
		Amount:      in.Amount,
		ProductInfo: in.ProductInfo,
		FirstName:   in.FirstName,
		Email:       in.Email,
		UDF:         in.UDF,
	}

	if hash.Verify(in.Hash, hash.Reverse(f, in.Status, m.Salt)) {
		return true
	}
	return hash.Verify(in.Hash, hash.ReverseLegacy(f, in.Status, m.Salt))
}

func mapGatewayStatus(s string) domain.Status {
	switch strings.ToLower(s) {
	case "success", "captured":
		return domain.StatusSuccess
	case "pending", "in progress":
		return domain.StatusProcessing
	default:
		return domain.StatusFailed
	}
}
