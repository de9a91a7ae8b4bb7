package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/domain"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/hash"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/logging"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/repository"
	"github.com/SaiYadav1818/MerchantAPIWrappingMtoS-sub001/internal/usecase"
)

type Handler struct {
	initiator *usecase.Initiator
	ingestor  *usecase.Ingestor
	refunder  *usecase.Refunder
	store     *repository.Store
	logger    logging.Logger
	validate  *validator.Validate
}

func NewHandler(initiator *usecase.Initiator, ingestor *usecase.Ingestor, refunder *usecase.Refunder, store *repository.Store, logger logging.Logger) *Handler {
	return &Handler{
		initiator: initiator,
		ingestor:  ingestor,
		refunder:  refunder,
		store:     store,
		logger:    logger,
		validate:  validator.New(),
	}
}

func (h *Handler) Routes(corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/api/v1/payments", h.InitiatePayment)
	r.Post("/api/v1/payments/webhook", h.Webhook)
	r.Post("/api/v1/payments/response/success", h.RedirectResponse)
	r.Post("/api/v1/payments/response/failure", h.RedirectResponse)
	r.Post("/api/v1/payments/{txnid}/refund", h.Refund)
	r.Get("/api/v1/transactions", h.ListTransactions)
	r.Get("/api/v1/transactions/{txnid}", h.GetTransaction)
	r.Get("/api/v1/healthz", h.Healthz)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)

	code := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		code = http.StatusBadRequest
	case domain.KindUnauthorized:
		code = http.StatusUnauthorized
	case domain.KindDuplicate:
		code = http.StatusConflict
	case domain.KindGatewayRetry:
		code = http.StatusServiceUnavailable
	case domain.KindGateway:
		code = http.StatusBadGateway
	}

	writeJSON(w, code, map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req InitiatePaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.initiator.Initiate(r.Context(), usecase.InitiateInput{
		MerchantID:  req.MerchantID,
		Txnid:       req.Txnid,
		Amount:      req.Amount,
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Email:       req.Email,
		Phone:       req.Phone,
		UDF: [domain.UDFCount]string{
			req.UDF1, req.UDF2, req.UDF3, req.UDF4, req.UDF5,
			req.UDF6, req.UDF7, req.UDF8, req.UDF9, req.UDF10,
		},
		SuccessURL: req.SuccessURL,
		FailureURL: req.FailureURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, InitiatePaymentResp{
		Txnid:       res.Txnid,
		Amount:      res.Amount,
		Hash:        res.Hash,
		RedirectURL: res.RedirectURL,
	})
}

// Webhook handles the gateway's server-to-server callback. The gateway
// retries indefinitely on any non-200 answer, so every outcome, including
// hash mismatches, storage failures and malformed payloads, degrades to
// 200 "OK". Nothing is allowed to escape to the transport layer.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook panic recovered", map[string]any{"panic": rec})
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}()

	in, err := parseCallbackForm(r)
	if err != nil {
		h.logger.Error("webhook parse failed", map[string]any{"error": err.Error()})
		return
	}

	if _, err := h.ingestor.Ingest(r.Context(), in); err != nil {
		h.logger.Error("webhook ingestion failed", map[string]any{
			"txnid": in.Txnid,
			"error": err.Error(),
		})
	}
}

// RedirectResponse handles the browser-posted variant of the callback: same
// authenticate-and-upsert, but the payer sees a rendered outcome page. A
// hash failure surfaces a suspicious-activity warning without blocking
// persistence.
func (h *Handler) RedirectResponse(w http.ResponseWriter, r *http.Request) {
	in, err := parseCallbackForm(r)
	if err != nil {
		renderOutcome(w, outcomeData{Status: "ERROR", Message: "malformed response"})
		return
	}

	txn, err := h.ingestor.Ingest(r.Context(), in)
	if err != nil {
		h.logger.Error("redirect ingestion failed", map[string]any{
			"txnid": in.Txnid,
			"error": err.Error(),
		})
		renderOutcome(w, outcomeData{
			Txnid:   in.Txnid,
			Status:  "ERROR",
			Message: "we could not record the payment outcome, please contact support",
		})
		return
	}

	renderOutcome(w, outcomeData{
		Txnid:      txn.Txnid,
		Status:     string(txn.Status),
		Amount:     hash.FormatAmount(txn.AmountMinor),
		Suspicious: !txn.HashVerified,
	})
}

func parseCallbackForm(r *http.Request) (usecase.CallbackInput, error) {
	if err := r.ParseForm(); err != nil {
		return usecase.CallbackInput{}, err
	}

	f := r.PostForm
	in := usecase.CallbackInput{
		Txnid:        f.Get("txnid"),
		Status:       f.Get("status"),
		Amount:       f.Get("amount"),
		ProductInfo:  f.Get("productinfo"),
		FirstName:    f.Get("firstname"),
		Email:        f.Get("email"),
		Phone:        f.Get("phone"),
		Hash:         f.Get("hash"),
		BankRef:      f.Get("bank_ref_num"),
		BankName:     f.Get("bankcode"),
		CardType:     f.Get("card_type"),
		GatewayTxnID: f.Get("mihpayid"),
		ErrorMessage: f.Get("error_Message"),
		Raw:          encodeRaw(f),
	}

	for i := 0; i < domain.UDFCount; i++ {
		in.UDF[i] = f.Get("udf" + strconv.Itoa(i+1))
	}

	return in, nil
}

// encodeRaw keeps the payload verbatim for audit; it is stored and never
// parsed again.
func encodeRaw(f url.Values) string {
	return f.Encode()
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	txnid := chi.URLParam(r, "txnid")

	raw, err := h.refunder.Refund(r.Context(), txnid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RefundResp{Txnid: txnid, GatewayRaw: raw})
}

// GET /api/v1/transactions?merchantId=&txnid=&status=&limit=&offset=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TxFilter{
		MerchantID: q.Get("merchantId"),
		Txnid:      q.Get("txnid"),
	}
	if st := q.Get("status"); st != "" {
		filter.Status = domain.Status(st)
	}

	limit := 50
	offset := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	items, err := h.store.ListTransactions(r.Context(), filter, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]TxItem, 0, len(items))
	for _, t := range items {
		out = append(out, toTxItem(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/v1/transactions/{txnid}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txnid := chi.URLParam(r, "txnid")
	t, err := h.store.GetByTxnid(r.Context(), txnid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, toTxItem(*t))
}

func toTxItem(t domain.Transaction) TxItem {
	return TxItem{
		Txnid:        t.Txnid,
		MerchantID:   t.MerchantID,
		Amount:       hash.FormatAmount(t.AmountMinor),
		Status:       string(t.Status),
		HashVerified: t.HashVerified,
		BankRef:      t.BankRef,
		BankName:     t.BankName,
		CardType:     t.CardType,
		GatewayTxnID: t.GatewayTxnID,
		ErrorMessage: t.ErrorMessage,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
