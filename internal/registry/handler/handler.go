// Package handler adapts the registry service onto HTTP. It owns request
// decoding, validation, and the uniform success/failure envelope; business
// rules stay in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vcregistry/internal/platform/config"
	"vcregistry/internal/platform/metrics"
	"vcregistry/internal/platform/middleware"
	"vcregistry/internal/registry/models"
	"vcregistry/pkg/vcerrors"
)

// Service is the registry operations surface consumed by the handler.
type Service interface {
	Register(ctx context.Context, walletAddress string) (int64, error)
	Check(ctx context.Context, walletAddress string) (int64, error)
	GetGuardian(ctx context.Context, walletAddress string) (*models.Guardian, error)
	UpsertGuardian(ctx context.Context, walletAddress string, patch models.GuardianPatch) (int64, error)
	UpsertShelter(ctx context.Context, walletAddress string, patch models.ShelterPatch) (int64, error)
	Issue(ctx context.Context, walletAddress, subjectDID, token, metadata string) (int64, error)
	Fetch(ctx context.Context, walletAddress, subjectDID string) (*models.Credential, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]models.Credential, error)
	Invalidate(ctx context.Context, walletAddress, subjectDID, reason string) error
}

// Handler serves the registry routes.
type Handler struct {
	registry Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New creates a registry Handler.
func New(registry Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{registry: registry, logger: logger, metrics: m}
}

// Register mounts the registry routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))

	router.Post("/v1/identities", h.handleRegisterIdentity)
	router.Get("/v1/identities/{wallet}", h.handleCheckIdentity)
	router.Get("/v1/identities/{wallet}/guardian", h.handleGetGuardian)
	router.Put("/v1/identities/{wallet}/guardian", h.handleUpsertGuardian)
	router.Put("/v1/identities/{wallet}/shelter", h.handleUpsertShelter)
	router.Post("/v1/identities/{wallet}/credentials", h.handleIssueCredential)
	router.Get("/v1/identities/{wallet}/credentials", h.handleListCredentials)
	router.Get("/v1/identities/{wallet}/credentials/{subjectDID}", h.handleGetCredential)
	router.Delete("/v1/identities/{wallet}/credentials/{subjectDID}", h.handleInvalidateCredential)
	router.Get("/healthz", h.handleHealthCheck)

	r.Mount("/", router)
}

func (h *Handler) handleRegisterIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, vcerrors.New(vcerrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, err)
		return
	}

	authID, err := h.registry.Register(ctx, req.WalletAddress)
	if err != nil {
		h.logFailure(ctx, "register identity", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"authId": authID}, "wallet registered")
}

func (h *Handler) handleCheckIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	authID, err := h.registry.Check(ctx, wallet)
	if err != nil {
		h.logFailure(ctx, "check identity", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"authId": authID}, "wallet confirmed")
}

func (h *Handler) handleGetGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	guardian, err := h.registry.GetGuardian(ctx, wallet)
	if err != nil {
		h.logFailure(ctx, "get guardian profile", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"guardianId":          guardian.ID,
		"email":               guardian.Email,
		"phone":               guardian.Phone,
		"name":                guardian.Name,
		"isEmailVerified":     guardian.IsEmailVerified,
		"isOnChainRegistered": guardian.IsOnChainRegistered,
	}, "")
}

func (h *Handler) handleUpsertGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	var req upsertGuardianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, vcerrors.New(vcerrors.CodeInvalidRequest, "invalid request body"))
		return
	}

	guardianID, err := h.registry.UpsertGuardian(ctx, wallet, req.patch())
	if err != nil {
		h.logFailure(ctx, "upsert guardian profile", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"guardianId": guardianID}, "guardian profile updated")
}

func (h *Handler) handleUpsertShelter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	var req upsertShelterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, vcerrors.New(vcerrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, err)
		return
	}

	shelterID, err := h.registry.UpsertShelter(ctx, wallet, req.patch())
	if err != nil {
		h.logFailure(ctx, "upsert shelter profile", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"shelterId": shelterID}, "shelter profile updated")
}

func (h *Handler) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	var req issueCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, vcerrors.New(vcerrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, err)
		return
	}

	credentialID, err := h.registry.Issue(ctx, wallet, req.SubjectDID, req.Token, req.Metadata)
	if err != nil {
		h.logFailure(ctx, "issue credential", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"credentialId": credentialID}, "credential stored")
}

func (h *Handler) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")
	subjectDID := chi.URLParam(r, "subjectDID")

	credential, err := h.registry.Fetch(ctx, wallet, subjectDID)
	if err != nil {
		h.logFailure(ctx, "get credential", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"token":     credential.Token,
		"metadata":  credential.Metadata,
		"createdAt": credential.CreatedAt.UTC().Format(time.RFC3339),
	}, "")
}

func (h *Handler) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")

	credentials, err := h.registry.ListByWallet(ctx, wallet)
	if err != nil {
		h.logFailure(ctx, "list credentials", err)
		writeFailure(w, err)
		return
	}

	items := make([]map[string]any, 0, len(credentials))
	for _, c := range credentials {
		items = append(items, map[string]any{
			"subjectDID":     c.SubjectDID,
			"token":          c.Token,
			"credentialType": c.CredentialType,
			"createdAt":      c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"credentials": items}, "")
}

func (h *Handler) handleInvalidateCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet := chi.URLParam(r, "wallet")
	subjectDID := chi.URLParam(r, "subjectDID")

	var req invalidateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, vcerrors.New(vcerrors.CodeInvalidRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, err)
		return
	}

	if err := h.registry.Invalidate(ctx, wallet, subjectDID, req.Reason); err != nil {
		h.logFailure(ctx, "invalidate credential", err)
		writeFailure(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "credential invalidated")
}

func (h *Handler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":    "SERVING",
		"message":   "vc-registry is serving",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.Version,
	}, "")
}

// logFailure keeps log noise proportional to severity: client errors log at
// warn, server errors at error.
func (h *Handler) logFailure(ctx context.Context, op string, err error) {
	code := vcerrors.CodeOf(err)
	args := []any{
		"request_id", middleware.GetRequestID(ctx),
		"code", string(code),
		"error", err.Error(),
	}
	if code.Retryable() {
		h.logger.ErrorContext(ctx, op+" failed", args...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", args...)
}
