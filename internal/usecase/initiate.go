package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/gateway"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/metrics"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
)

// initiatorStore is the slice of the store the initiator needs.
type initiatorStore interface {
	GetMerchant(ctx context.Context, id string) (*domain.Merchant, error)
	Insert(ctx context.Context, t *domain.Transaction) error
}

type Initiator struct {
	Store   initiatorStore
	Gateway *gateway.Client
	Logger  logging.Logger
	Metrics *metrics.Counters
	Now     func() time.Time
}

type InitiateInput struct {
	MerchantID  string
	Txnid       string
	Amount      string
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
	UDF         [domain.UDFCount]string
	SuccessURL  string
	FailureURL  string
}

type InitiateResult struct {
	Txnid       string
	Amount      string
	Hash        string
	RedirectURL string
}

func (i *Initiator) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Initiate writes the INITIATED row and posts the forward-hashed request to
// the gateway. The row is written first so that a callback (or the sweep)
// always finds it, even when the outbound call fails; a gateway failure is
// reported to the caller but never rolls the row back.
func (i *Initiator) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	merchant, err := i.Store.GetMerchant(ctx, in.MerchantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindUnauthorized, "unknown merchant")
		}
		return nil, domain.Wrap(domain.KindInternal, "merchant lookup", err)
	}
	if !merchant.Active {
		return nil, domain.E(domain.KindUnauthorized, "merchant is inactive")
	}

	amountMinor, err := hash.ParseAmount(in.Amount)
	if err != nil || amountMinor <= 0 {
		return nil, domain.E(domain.KindValidation, "invalid amount")
	}
	amount := hash.FormatAmount(amountMinor)

	txnid := in.Txnid
	if txnid == "" {
		txnid = "T" + uuid.New().String()[:12]
	}

	udf := in.UDF
	if udf[0] == "" {
		udf[0] = merchant.ID
	}

	fwd := hash.Forward(hash.Fields{
		Key:         merchant.Key,
		Txnid:       txnid,
		Amount:      amount,
		ProductInfo: in.ProductInfo,
		FirstName:   in.FirstName,
		Email:       in.Email,
		UDF:         udf,
	}, merchant.Salt)

	now := i.now()
	txn := &domain.Transaction{
		Txnid:       txnid,
		MerchantID:  merchant.ID,
		AmountMinor: amountMinor,
		ProductInfo: in.ProductInfo,
		FirstName:   in.FirstName,
		Email:       in.Email,
		Phone:       in.Phone,
		UDF:         udf,
		Status:      domain.StatusInitiated,
		Hash:        fwd,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := i.Store.Insert(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrDuplicateTxnid) {
			return nil, domain.E(domain.KindDuplicate, "txnid already used")
		}
		return nil, domain.Wrap(domain.KindInternal, "persist transaction", err)
	}

	i.Metrics.IncInitiated()
	i.Logger.Info("payment initiated", map[string]any{
		"txnid":       txnid,
		"merchant_id": merchant.ID,
		"amount":      amount,
	})

	resp, err := i.Gateway.Initiate(ctx, gateway.InitiateRequest{
		Key:         merchant.Key,
		Txnid:       txnid,
		Amount:      amount,
		ProductInfo: in.ProductInfo,
		FirstName:   in.FirstName,
		Email:       in.Email,
		Phone:       in.Phone,
		SuccessURL:  in.SuccessURL,
		FailureURL:  in.FailureURL,
		UDF:         udf,
		Hash:        fwd,
	})
	if err != nil {
		i.Logger.Error("gateway initiation failed", map[string]any{
			"txnid": txnid,
			"kind":  string(domain.KindOf(err)),
			"error": err.Error(),
		})
		return nil, err
	}

	return &InitiateResult{
		Txnid:       txnid,
		Amount:      amount,
		Hash:        fwd,
		RedirectURL: resp.RedirectURL,
	}, nil
}
