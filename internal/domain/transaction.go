package domain

import "time"

type Status string

const (
	StatusInitiated    Status = "INITIATED"
	StatusProcessing   Status = "PROCESSING"
	StatusSuccess      Status = "SUCCESS"
	StatusFailed       Status = "FAILED"
	StatusHashMismatch Status = "HASH_MISMATCH"
)

// Terminal reports whether a status can no longer change on its own. Once a
// row reaches a terminal status, later writes may refresh metadata but must
// not revert it to a non-terminal one.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusHashMismatch:
		return true
	}
	return false
}

// UDFCount is the number of user-defined pass-through slots carried on the
// gateway round-trip. UDF1 conventionally holds the merchant id and UDF2 the
// order id; the rest are opaque.
const UDFCount = 10

type Transaction struct {
	ID           int64
	Txnid        string
	MerchantID   string
	AmountMinor  int64
	ProductInfo  string
	FirstName    string
	Email        string
	Phone        string
	UDF          [UDFCount]string
	Status       Status
	Hash         string
	HashVerified bool
	BankRef      string
	BankName     string
	CardType     string
	GatewayTxnID string
	RawResponse  string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Merge applies an incoming write on top of an existing row for the same
// txnid. Identity and CreatedAt always come from the existing row; metadata
// fields take the incoming value when non-empty. A terminal status is never
// downgraded to a non-terminal one. Two different terminal statuses is
// last-write-wins, reported through the conflict flag so callers can log it.
func Merge(existing, incoming *Transaction) (*Transaction, bool) {
	merged := *incoming
	merged.ID = existing.ID
	merged.Txnid = existing.Txnid
	merged.CreatedAt = existing.CreatedAt

	if merged.MerchantID == "" {
		merged.MerchantID = existing.MerchantID
	}
	if merged.AmountMinor == 0 {
		merged.AmountMinor = existing.AmountMinor
	}
	if merged.ProductInfo == "" {
		merged.ProductInfo = existing.ProductInfo
	}
	if merged.FirstName == "" {
		merged.FirstName = existing.FirstName
	}
	if merged.Email == "" {
		merged.Email = existing.Email
	}
	if merged.Phone == "" {
		merged.Phone = existing.Phone
	}
	for i := range merged.UDF {
		if merged.UDF[i] == "" {
			merged.UDF[i] = existing.UDF[i]
		}
	}
	if merged.BankRef == "" {
		merged.BankRef = existing.BankRef
	}
	if merged.BankName == "" {
		merged.BankName = existing.BankName
	}
	if merged.CardType == "" {
		merged.CardType = existing.CardType
	}
	if merged.GatewayTxnID == "" {
		merged.GatewayTxnID = existing.GatewayTxnID
	}
	if merged.RawResponse == "" {
		merged.RawResponse = existing.RawResponse
	}
	if merged.ErrorMessage == "" {
		merged.ErrorMessage = existing.ErrorMessage
	}
	if merged.Hash == "" {
		merged.Hash = existing.Hash
		merged.HashVerified = existing.HashVerified
	}

	conflict := false
	if existing.Status.Terminal() {
		if !incoming.Status.Terminal() {
			merged.Status = existing.Status
		} else if incoming.Status != existing.Status {
			conflict = true
		}
	}

	return &merged, conflict
}
