package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/repository"
	"github.com/xerp/xerp/internal/service"
)

type AdminHandlers struct {
	registration *service.RegistrationService
	logger       *logrus.Logger
}

func NewAdminHandlers(registration *service.RegistrationService, logger *logrus.Logger) *AdminHandlers {
	return &AdminHandlers{
		registration: registration,
		logger:       logger,
	}
}

// AdminRequest is the /ceate_user body. id and regcode are accepted and
// ignored; the code is always generated.
type AdminRequest struct {
	ID       *int32  `json:"id,omitempty"`
	Email    string  `json:"email"`
	Mobile   string  `json:"mobile"`
	Username string  `json:"username"`
	Pincode  string  `json:"pincode"`
	RegCode  *string `json:"regcode,omitempty"`
}

type AdminUserRequest struct {
	ID       *int32  `json:"id,omitempty"`
	AdminID  *int32  `json:"admin_id"`
	RegCode  *string `json:"regcode,omitempty"`
	Email    string  `json:"email"`
	Mobile   string  `json:"mobile"`
	Username string  `json:"username"`
	Pincode  string  `json:"pincode"`
}

func (h *AdminHandlers) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalidRequest(w)
		return
	}

	in, ok := adminInput(req.Username, req.Mobile, req.Email, req.Pincode)
	if !ok {
		respondError(w, CodeMissingFields, "Missing required fields")
		return
	}

	_, err := h.registration.CreateAdmin(r.Context(), in)
	h.respondRegistration(w, err, logrus.Fields{"email": in.Email})
}

func (h *AdminHandlers) CreateAdminUser(w http.ResponseWriter, r *http.Request) {
	var req AdminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondInvalidRequest(w)
		return
	}

	in, ok := adminInput(req.Username, req.Mobile, req.Email, req.Pincode)
	if !ok || req.AdminID == nil {
		respondError(w, CodeMissingFields, "Missing required fields")
		return
	}

	_, err := h.registration.CreateAdminUser(r.Context(), *req.AdminID, in)
	h.respondRegistration(w, err, logrus.Fields{"admin_id": *req.AdminID, "email": in.Email})
}

func (h *AdminHandlers) respondRegistration(w http.ResponseWriter, err error, fields logrus.Fields) {
	var codeErr *service.CodeError
	switch {
	case err == nil:
		respondSuccess(w, "Registration successful!")
	case errors.As(err, &codeErr):
		h.logger.WithError(err).WithFields(fields).Error("Failed to generate registration code")
		respondError(w, CodeCodeGenerationFailed, "Failed to generate code")
	case errors.Is(err, repository.ErrDuplicate):
		respondError(w, CodeDuplicate, "Registration failed: record already exists")
	default:
		h.logger.WithError(err).WithFields(fields).Error("Failed to register admin")
		respondError(w, CodeRegistrationFailed, "Registration failed")
	}
}

func adminInput(username, mobile, email, pincode string) (service.AdminInput, bool) {
	in := service.AdminInput{
		UserName: strings.TrimSpace(username),
		Mobile:   strings.TrimSpace(mobile),
		Email:    strings.TrimSpace(email),
		Pincode:  strings.TrimSpace(pincode),
	}
	ok := in.UserName != "" && in.Mobile != "" && in.Email != "" && in.Pincode != ""
	return in, ok
}
