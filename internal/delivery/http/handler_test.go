package httpd_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpd "github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/delivery/http"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/gateway"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/metrics"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/usecase"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

type fixture struct {
	store   *repository.Store
	handler http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store, err := repository.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SeedMerchant(context.Background(), &domain.Merchant{
		ID: "m1", Key: "K1", Salt: "S1", Active: true,
	}))

	gwSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gwSrv.Close)

	var logger logging.Logger = &noopLogger{}
	counters := &metrics.Counters{}
	gw := gateway.NewClient(gwSrv.URL, time.Second)

	initiator := &usecase.Initiator{Store: store, Gateway: gw, Logger: logger, Metrics: counters}
	ingestor := &usecase.Ingestor{Store: store, Logger: logger, Metrics: counters, DefaultMerchantID: "m1"}
	refunder := &usecase.Refunder{Store: store, Gateway: gw, Logger: logger}

	h := httpd.NewHandler(initiator, ingestor, refunder, store, logger)

	return &fixture{store: store, handler: h.Routes("http://localhost:5173")}
}

func webhookForm(txnid, status string) url.Values {
	f := hash.Fields{
		Key:         "K1",
		Txnid:       txnid,
		Amount:      "100.00",
		ProductInfo: "Order",
		FirstName:   "John",
		Email:       "j@x.com",
	}

	v := url.Values{}
	v.Set("txnid", txnid)
	v.Set("status", status)
	v.Set("amount", "100.00")
	v.Set("productinfo", "Order")
	v.Set("firstname", "John")
	v.Set("email", "j@x.com")
	v.Set("mihpayid", "GW-1")
	v.Set("hash", hash.Reverse(f, status, "S1"))
	return v
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_ValidCallbackAnswersOK(t *testing.T) {
	fx := setup(t)

	rec := postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN2", "success"))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Equal(t, "OK", string(body))

	got, err := fx.store.GetByTxnid(context.Background(), "TXN2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, got.Status)
	require.True(t, got.HashVerified)
}

func TestWebhook_GarbageHashStillAnswersOK(t *testing.T) {
	fx := setup(t)

	form := webhookForm("TXN3", "success")
	form.Set("hash", "garbage")

	rec := postForm(fx.handler, "/api/v1/payments/webhook", form)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	got, err := fx.store.GetByTxnid(context.Background(), "TXN3")
	require.NoError(t, err)
	require.Equal(t, domain.StatusHashMismatch, got.Status)
	require.False(t, got.HashVerified)
}

func TestWebhook_MalformedPayloadStillAnswersOK(t *testing.T) {
	fx := setup(t)

	rec := postForm(fx.handler, "/api/v1/payments/webhook", url.Values{})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestWebhook_StorageFailureStillAnswersOK(t *testing.T) {
	fx := setup(t)
	fx.store.Close()

	rec := postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN2", "success"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestRedirect_RendersOutcomePage(t *testing.T) {
	fx := setup(t)

	rec := postForm(fx.handler, "/api/v1/payments/response/success", webhookForm("TXN2", "success"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "TXN2")
	require.Contains(t, rec.Body.String(), "SUCCESS")
	require.NotContains(t, rec.Body.String(), "suspicious activity")
}

func TestRedirect_HashFailureFlagsSuspiciousActivity(t *testing.T) {
	fx := setup(t)

	form := webhookForm("TXN3", "success")
	form.Set("hash", "garbage")

	rec := postForm(fx.handler, "/api/v1/payments/response/success", form)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "suspicious activity")

	// Persistence is never blocked by the flag.
	got, err := fx.store.GetByTxnid(context.Background(), "TXN3")
	require.NoError(t, err)
	require.Equal(t, domain.StatusHashMismatch, got.Status)
}

func TestInitiatePayment_EndToEnd(t *testing.T) {
	fx := setup(t)

	body := `{"merchantId":"m1","txnid":"TXN1","amount":"100","productinfo":"Order","firstname":"John","email":"j@x.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"txnid":"TXN1"`)
	require.Contains(t, rec.Body.String(), `"amount":"100.00"`)
}

func TestInitiatePayment_ValidationFailure(t *testing.T) {
	fx := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{"merchantId":"m1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiatePayment_DuplicateIsConflict(t *testing.T) {
	fx := setup(t)

	body := `{"merchantId":"m1","txnid":"TXN1","amount":"100","productinfo":"Order","firstname":"John","email":"j@x.com"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		fx.handler.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, "request %d", i)
	}
}

func TestGetTransaction(t *testing.T) {
	fx := setup(t)

	postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN2", "success"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/TXN2", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"SUCCESS"`)
	require.Contains(t, rec.Body.String(), `"hashVerified":true`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/transactions/NOPE", nil)
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactions_FiltersByStatus(t *testing.T) {
	fx := setup(t)

	postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN2", "success"))
	postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN9", "failure"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?status=SUCCESS", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "TXN2")
	require.NotContains(t, rec.Body.String(), "TXN9")
}

func TestRefund_RequiresSuccessfulTransaction(t *testing.T) {
	fx := setup(t)

	postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN9", "failure"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/TXN9/refund", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefund_ForwardsToGateway(t *testing.T) {
	fx := setup(t)

	postForm(fx.handler, "/api/v1/payments/webhook", webhookForm("TXN2", "success"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/TXN2/refund", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	fx := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
