package http

import (
	"context"
	"net/http"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
)

type AccountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Account, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*service.Session, error)
	AdminLogin(ctx context.Context, email, password string) (*service.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	GoogleLogin(ctx context.Context, code string) (*service.Session, error)
	Profile(ctx context.Context, accountID string) (*domain.Account, error)
}

type CSRFIssuer interface {
	IssueCSRF(accountID string) (string, error)
}

type UserHandler struct {
	accounts AccountService
	csrf     CSRFIssuer
}

func NewUserHandler(accounts AccountService, csrf CSRFIssuer) *UserHandler {
	return &UserHandler{accounts: accounts, csrf: csrf}
}

type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequestDTO struct {
	Code string `json:"code" validate:"required"`
}

type ForgotPasswordRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequestDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    *domain.Account `json:"user"`
}

// POST /api/user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, MessageResponse{
		Success: true,
		Message: "Account created. Check your email to verify your address.",
	})
}

// GET /api/user/verify-email?token=
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "validation_failed", "token is required")
		return
	}
	if err := h.accounts.VerifyEmail(r.Context(), token); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Email verified"})
}

// POST /api/user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.accounts.Login)
}

// POST /api/user/admin
func (h *UserHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.accounts.AdminLogin)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, email, password string) (*service.Session, error)) {
	var req LoginRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := fn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Success: true, Token: session.Token, User: session.Account})
}

// POST /api/user/google
func (h *UserHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.accounts.GoogleLogin(r.Context(), req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Success: true, Token: session.Token, User: session.Account})
}

// POST /api/user/forgot-password
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "If the address is registered, a reset link is on its way.",
	})
}

// POST /api/user/reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Password updated"})
}

// GET /api/user/csrf-token
func (h *UserHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.IssueCSRF(accountIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "csrfToken": token})
}

// GET /api/user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Profile(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": account})
}
