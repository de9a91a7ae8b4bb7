package httpd

import "time"

type InitiatePaymentReq struct {
	MerchantID  string `json:"merchantId" validate:"required"`
	Txnid       string `json:"txnid"`
	Amount      string `json:"amount" validate:"required"`
	ProductInfo string `json:"productinfo" validate:"required"`
	FirstName   string `json:"firstname" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	UDF1        string `json:"udf1"`
	UDF2        string `json:"udf2"`
	UDF3        string `json:"udf3"`
	UDF4        string `json:"udf4"`
	UDF5        string `json:"udf5"`
	UDF6        string `json:"udf6"`
	UDF7        string `json:"udf7"`
	UDF8        string `json:"udf8"`
	UDF9        string `json:"udf9"`
	UDF10       string `json:"udf10"`
	SuccessURL  string `json:"surl"`
	FailureURL  string `json:"furl"`
}

type InitiatePaymentResp struct {
	Txnid       string `json:"txnid"`
	Amount      string `json:"amount"`
	Hash        string `json:"hash"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type TxItem struct {
	Txnid        string    `json:"txnid"`
	MerchantID   string    `json:"merchantId"`
	Amount       string    `json:"amount"`
	Status       string    `json:"status"`
	HashVerified bool      `json:"hashVerified"`
	BankRef      string    `json:"bankRef,omitempty"`
	BankName     string    `json:"bankName,omitempty"`
	CardType     string    `json:"cardType,omitempty"`
	GatewayTxnID string    `json:"gatewayTxnId,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RefundResp struct {
	Txnid      string `json:"txnid"`
	GatewayRaw string `json:"gatewayResponse"`
}
