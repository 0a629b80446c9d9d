package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/repository"
	"github.com/xerp/xerp/internal/service"
)

type AuthHandlers struct {
	otpService   *service.OTPService
	registration *service.RegistrationService
	logger       *logrus.Logger
}

func NewAuthHandlers(
	otpService *service.OTPService,
	registration *service.RegistrationService,
	logger *logrus.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		otpService:   otpService,
		registration: registration,
		logger:       logger,
	}
}

// UserRequest is shared by /login and /add_user.
type UserRequest struct {
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Username string `json:"username"`
}

type VerifyOTPRequest struct {
	OTP *uint32 `json:"otp"`
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalidRequest(w)
		return
	}

	email := strings.TrimSpace(req.Email)
	mobile := strings.TrimSpace(req.Mobile)
	if email == "" || mobile == "" {
		respondError(w, CodeMissingFields, "Missing email or mobile")
		return
	}

	_, err := h.otpService.SendLoginOTP(r.Context(), email, mobile)
	switch {
	case err == nil:
		respondSuccess(w, fmt.Sprintf("OTP sent to %s and %s and added to DB", mobile, email))
	case errors.Is(err, service.ErrEmailBuild):
		h.logger.WithError(err).Warn("Failed to build OTP email")
		respondError(w, CodeEmailBuildFailed, "Failed to create email message")
	case errors.Is(err, service.ErrEmailSend):
		h.logger.WithError(err).Error("Failed to send OTP email")
		respondError(w, CodeEmailSendFailed, "Email send error")
	default:
		h.logger.WithError(err).Error("Failed to store OTP")
		respondError(w, CodeDBError, "DB Error")
	}
}

func (h *AuthHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil || req.OTP == nil || *req.OTP > 1<<31-1 {
		respondInvalidRequest(w)
		return
	}

	err := h.otpService.VerifyOTP(r.Context(), int32(*req.OTP))
	switch {
	case err == nil:
		respondSuccess(w, "OTP verified successfully")
	case errors.Is(err, service.ErrOTPExpired):
		respondError(w, CodeOTPExpired, "OTP expired")
	case errors.Is(err, service.ErrOTPNotFound):
		respondError(w, CodeOTPNotFound, "OTP not found")
	default:
		h.logger.WithError(err).Error("Failed to verify OTP")
		respondError(w, CodeDBError, "DB Error")
	}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalidRequest(w)
		return
	}

	email := strings.TrimSpace(req.Email)
	mobile := strings.TrimSpace(req.Mobile)
	username := strings.TrimSpace(req.Username)
	if email == "" || mobile == "" || username == "" {
		respondError(w, CodeMissingFields, "Missing email, mobile, or username")
		return
	}

	_, err := h.registration.RegisterUser(r.Context(), username, email, mobile)
	switch {
	case err == nil:
		respondSuccess(w, "Registration successful!")
	case errors.Is(err, repository.ErrDuplicate):
		respondError(w, CodeDuplicate, "User with this email or phone already exists")
	default:
		h.logger.WithError(err).Error("Failed to register user")
		respondError(w, CodeDBError, "Failed to register user")
	}
}
