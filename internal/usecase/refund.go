package usecase

import (
	"context"
	"errors"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/gateway"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
)

type refunderStore interface {
	GetByTxnid(ctx context.Context, txnid string) (*domain.Transaction, error)
	GetMerchant(ctx context.Context, id string) (*domain.Merchant, error)
}

// Refunder forwards refund commands to the gateway for settled payments.
type Refunder struct {
	Store   refunderStore
	Gateway *gateway.Client
	Logger  logging.Logger
}

func (r *Refunder) Refund(ctx context.Context, txnid string) (string, error) {
	txn, err := r.Store.GetByTxnid(ctx, txnid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.E(domain.KindValidation, "unknown txnid")
		}
		return "", domain.Wrap(domain.KindInternal, "transaction lookup", err)
	}

	if txn.Status != domain.StatusSuccess {
		return "", domain.E(domain.KindValidation, "only successful transactions can be refunded")
	}
	if txn.GatewayTxnID == "" {
		return "", domain.E(domain.KindValidation, "transaction has no gateway reference")
	}

	merchant, err := r.Store.GetMerchant(ctx, txn.MerchantID)
	if err != nil {
		return "", domain.Wrap(domain.KindInternal, "merchant lookup", err)
	}

	amount := hash.FormatAmount(txn.AmountMinor)

	// The command API signs key|command|var1|salt.
	cmdHash := hash.Command(merchant.Key, "cancel_refund_transaction", txn.GatewayTxnID, merchant.Salt)

	body, err := r.Gateway.Refund(ctx, merchant.Key, cmdHash, txn.GatewayTxnID, amount)
	if err != nil {
		r.Logger.Error("refund failed", map[string]any{
			"txnid": txnid,
			"kind":  string(domain.KindOf(err)),
			"error": err.Error(),
		})
		return "", err
	}

	r.Logger.Info("refund requested", map[string]any{"txnid": txnid})
	return body, nil
}
