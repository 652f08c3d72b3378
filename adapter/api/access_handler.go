package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	accessApp "github.com/felixgeelhaar/reelgate/internal/access/application"
	accessDomain "github.com/felixgeelhaar/reelgate/internal/access/domain"
	"github.com/felixgeelhaar/reelgate/internal/access/token"
	entitlementApp "github.com/felixgeelhaar/reelgate/internal/entitlement/application"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	paymentsDomain "github.com/felixgeelhaar/reelgate/internal/payments/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// WebhookSecretHeader carries the shared secret on payment webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// AccessService runs access decisions.
type AccessService interface {
	Decide(ctx context.Context, userID sharedDomain.UserID, raw string) (accessDomain.Decision, error)
	Usage(ctx context.Context, userID sharedDomain.UserID) (accessApp.Usage, error)
	ReportDeliveryFailure(ctx context.Context, userID sharedDomain.UserID, decision accessDomain.Decision, cause error) error
}

// PlanService reports plan status.
type PlanService interface {
	Status(ctx context.Context, userID sharedDomain.UserID) (entitlementApp.PlanStatus, error)
}

// PurchaseService applies payment notifications.
type PurchaseService interface {
	Apply(ctx context.Context, purchase paymentsDomain.PurchaseSucceeded) (*entitlementDomain.Entitlement, error)
}

// AccessHandler handles access API requests.
type AccessHandler struct {
	access    AccessService
	plans     PlanService
	purchases PurchaseService
	secret    []byte
	logger    *slog.Logger
}

// AccessHandlerConfig holds dependencies for the access handler.
type AccessHandlerConfig struct {
	Access    AccessService
	Plans     PlanService
	Purchases PurchaseService
	// WebhookSecret authenticates POST /api/v1/purchases. When empty the
	// route is not served.
	WebhookSecret string
	Logger        *slog.Logger
}

// NewAccessHandler creates a new access handler.
func NewAccessHandler(cfg AccessHandlerConfig) *AccessHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AccessHandler{
		access:    cfg.Access,
		plans:     cfg.Plans,
		purchases: cfg.Purchases,
		secret:    []byte(cfg.WebhookSecret),
		logger:    cfg.Logger,
	}
}

// DecideRequest is the body of POST /api/v1/access.
type DecideRequest struct {
	UserID sharedDomain.UserID `json:"user_id"`
	Token  string              `json:"token"`
}

// Decide handles POST /api/v1/access. Business denials are returned with
// 200 and outcome "denied"; only store failures produce an error status.
func (h *AccessHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req DecideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID.IsZero() {
		writeAPIError(w, ErrBadRequest.WithMessage("user_id is required"))
		return
	}

	decision, err := h.access.Decide(r.Context(), req.UserID, req.Token)
	if err != nil {
		h.writeServiceError(w, r, "access decision failed", err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// DeliveryFailureRequest is the body of POST /api/v1/access/delivery-failures.
type DeliveryFailureRequest struct {
	UserID   sharedDomain.UserID   `json:"user_id"`
	Decision accessDomain.Decision `json:"decision"`
	Cause    string                `json:"cause"`
}

// ReportDeliveryFailure handles POST /api/v1/access/delivery-failures.
func (h *AccessHandler) ReportDeliveryFailure(w http.ResponseWriter, r *http.Request) {
	var req DeliveryFailureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID.IsZero() || !req.Decision.IsGranted() {
		writeAPIError(w, ErrBadRequest.WithMessage("a granted decision and user_id are required"))
		return
	}
	cause := errors.New(req.Cause)
	if req.Cause == "" {
		cause = errors.New("unspecified delivery failure")
	}
	if err := h.access.ReportDeliveryFailure(r.Context(), req.UserID, req.Decision, cause); err != nil {
		h.logger.Error("failed to report delivery failure", observability.ErrorKey, err)
		writeAPIError(w, ErrInternalServer)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ResolveToken handles GET /api/v1/tokens/{token}. It parses only; no
// store is touched.
func (h *AccessHandler) ResolveToken(w http.ResponseWriter, r *http.Request) {
	intent, err := token.Resolve(r.PathValue("token"))
	if err != nil {
		writeAPIError(w, ErrBadRequest.WithMessage(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intent":   intent,
		"delivers": intent.Action.Delivers(),
	})
}

// GetUsage handles GET /api/v1/users/{userID}/usage.
func (h *AccessHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	usage, err := h.access.Usage(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "usage lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// GetPlan handles GET /api/v1/users/{userID}/plan.
func (h *AccessHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	status, err := h.plans.Status(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "plan lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// RecordPurchase handles POST /api/v1/purchases, the push-style payment
// webhook. The body matches the message-bus notification.
func (h *AccessHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	if !h.webhookAuthorized(r) {
		writeAPIError(w, ErrUnauthorized)
		return
	}
	var req paymentsDomain.PurchaseSucceeded
	if !decodeBody(w, r, &req) {
		return
	}
	record, err := h.purchases.Apply(r.Context(), req)
	if err != nil {
		if errors.Is(err, paymentsDomain.ErrInvalidPurchase) {
			writeAPIError(w, ErrBadRequest.WithMessage(err.Error()))
			return
		}
		h.writeServiceError(w, r, "purchase not recorded", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// AcceptsPurchases reports whether a webhook secret is configured.
func (h *AccessHandler) AcceptsPurchases() bool {
	return len(h.secret) > 0
}

func (h *AccessHandler) webhookAuthorized(r *http.Request) bool {
	if len(h.secret) == 0 {
		return false
	}
	given := []byte(r.Header.Get(WebhookSecretHeader))
	return subtle.ConstantTimeCompare(given, h.secret) == 1
}

func (h *AccessHandler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		observability.CorrelationIDKey, observability.CorrelationIDFromContext(r.Context()),
		observability.ErrorKey, err,
	)
	switch {
	case errors.Is(err, accessDomain.ErrStoreUnavailable):
		writeAPIError(w, ErrUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeAPIError(w, ErrUnavailable.WithMessage("request cancelled"))
	default:
		writeAPIError(w, ErrInternalServer)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeAPIError(w, ErrBadRequest.WithMessage("invalid JSON body"))
		return false
	}
	return true
}

func pathUserID(w http.ResponseWriter, r *http.Request) (sharedDomain.UserID, bool) {
	userID, err := sharedDomain.ParseUserID(r.PathValue("userID"))
	if err != nil || userID.IsZero() {
		writeAPIError(w, ErrBadRequest.WithMessage("invalid user id"))
		return 0, false
	}
	return userID, true
}
