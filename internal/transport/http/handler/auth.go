package handler

import (
	"encoding/json"
	"net/http"

	"github.com/greentech-platform/api/internal/application/auth"
	"github.com/greentech-platform/api/internal/application/verification"
	"github.com/greentech-platform/api/internal/domain"
	"github.com/greentech-platform/api/internal/pkg/validate"
	"github.com/greentech-platform/api/internal/transport/http/middleware"
)

// AuthHandler handles registration, login, token and verification-code endpoints.
type AuthHandler struct {
	svc   auth.Service
	codes verification.Service
}

func NewAuthHandler(svc auth.Service, codes verification.Service) *AuthHandler {
	return &AuthHandler{svc: svc, codes: codes}
}

func (h *AuthHandler) SendEmailCode(w http.ResponseWriter, r *http.Request) {
	req, p, ok := h.decodeSendCode(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendEmailCode(r.Context(), req.Identifier, p); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *AuthHandler) SendPhoneCode(w http.ResponseWriter, r *http.Request) {
	req, p, ok := h.decodeSendCode(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendPhoneCode(r.Context(), req.Identifier, p); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *AuthHandler) decodeSendCode(w http.ResponseWriter, r *http.Request) (auth.SendCodeRequest, domain.Purpose, bool) {
	var req auth.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, "", false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, "", false
	}
	p, err := domain.ParsePurpose(req.Purpose)
	if err != nil {
		httpError(w, err)
		return req, "", false
	}
	return req, p, true
}

type verifyCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6"`
	Channel    string `json:"channel" validate:"required"`
	Purpose    string `json:"purpose" validate:"required"`
}

// VerifyCode checks and consumes a code without any further side effect.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ch, err := domain.ParseChannel(req.Channel)
	if err != nil {
		httpError(w, err)
		return
	}
	p, err := domain.ParsePurpose(req.Purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	if err := h.codes.Verify(r.Context(), req.Identifier, req.Code, ch, p); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code verified"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.PasswordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.PasswordLogin(r.Context(), req.Identifier, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) PhoneCodeLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.CodeLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.PhoneCodeLogin(r.Context(), req.Phone, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password reset"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) CheckAccount(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}
	exists, err := h.svc.CheckAccount(r.Context(), identifier)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout is a client-side operation with stateless tokens: the server has
// nothing to revoke, the client discards its pair.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
