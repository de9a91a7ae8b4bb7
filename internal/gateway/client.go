// Package gateway talks to the upstream payment gateway: the synchronous
// initiation post and the refund command. Failures are classified into the
// error-kind taxonomy from the gateway's free-text error descriptions.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
			// The payer's browser follows the payment-page redirect,
			// not this client; surface the Location instead.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// InitiateRequest is the form the gateway's payment page accepts. Hash is
// the forward digest over the same fields.
type InitiateRequest struct {
	Key         string
	Txnid       string
	Amount      string
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
	SuccessURL  string
	FailureURL  string
	UDF         [domain.UDFCount]string
	Hash        string
}

type InitiateResponse struct {
	RedirectURL string
	RawBody     string
}

// errorBody is the gateway's error envelope. The body is not always JSON;
// classification falls back to matching the raw text.
type errorBody struct {
	ErrorDesc string `json:"error_desc"`
	Error     string `json:"error"`
}

func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	form := url.Values{}
	form.Set("key", req.Key)
	form.Set("txnid", req.Txnid)
	form.Set("amount", req.Amount)
	form.Set("productinfo", req.ProductInfo)
	form.Set("firstname", req.FirstName)
	form.Set("email", req.Email)
	form.Set("phone", req.Phone)
	form.Set("surl", req.SuccessURL)
	form.Set("furl", req.FailureURL)
	for i, v := range req.UDF {
		form.Set("udf"+strconv.Itoa(i+1), v)
	}
	form.Set("hash", req.Hash)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/_payment", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "build gateway request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, domain.Wrap(domain.KindGatewayRetry, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Wrap(domain.KindGateway, "read gateway response", err)
	}

	// The gateway answers the initiation post with a redirect to its
	// payment page; anything else carries an error description.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return &InitiateResponse{
			RedirectURL: resp.Header.Get("Location"),
			RawBody:     string(body),
		}, nil
	}
	if resp.StatusCode == http.StatusOK {
		return &InitiateResponse{RawBody: string(body)}, nil
	}

	return nil, ClassifyError(string(body))
}

// Refund issues the refund command against a previously captured payment.
func (c *Client) Refund(ctx context.Context, key, hash, gatewayTxnID, amount string) (string, error) {
	form := url.Values{}
	form.Set("key", key)
	form.Set("command", "cancel_refund_transaction")
	form.Set("var1", gatewayTxnID)
	form.Set("var2", amount)
	form.Set("hash", hash)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/merchant/postservice.php?form=2", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.Wrap(domain.KindInternal, "build refund request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", domain.Wrap(domain.KindGatewayRetry, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.Wrap(domain.KindGateway, "read gateway response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", ClassifyError(string(body))
	}
	return string(body), nil
}

// ClassifyError maps a gateway error body onto the taxonomy by matching its
// free-text description against known phrases. The gateway has no stable
// machine-readable error codes, so substring matching is the contract.
func ClassifyError(body string) *domain.Error {
	desc := body

	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err == nil {
		if eb.ErrorDesc != "" {
			desc = eb.ErrorDesc
		} else if eb.Error != "" {
			desc = eb.Error
		}
	}

	lower := strings.ToLower(desc)

	switch {
	case strings.Contains(lower, "duplicate transaction"):
		return domain.E(domain.KindDuplicate, desc)
	case strings.Contains(lower, "timeout"),
		strings.Contains(lower, "temporarily unavailable"),
		strings.Contains(lower, "try again"):
		return domain.E(domain.KindGatewayRetry, desc)
	}
	return domain.E(domain.KindGateway, desc)
}
