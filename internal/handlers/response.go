package handlers

import (
	"encoding/json"
	"net/http"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Error kinds carried in StatusResponse.Code.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeDuplicate            = "DUPLICATE"
	CodeDBError              = "DB_ERROR"
	CodeEmailBuildFailed     = "EMAIL_BUILD_FAILED"
	CodeEmailSendFailed      = "EMAIL_SEND_FAILED"
	CodeOTPExpired           = "OTP_EXPIRED"
	CodeOTPNotFound          = "OTP_NOT_FOUND"
	CodeCodeGenerationFailed = "CODE_GENERATION_FAILED"
	CodeRegistrationFailed   = "REGISTRATION_FAILED"
)

// StatusResponse is the envelope every domain endpoint answers with.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondSuccess(w http.ResponseWriter, message string) {
	respondWithJSON(w, http.StatusOK, StatusResponse{
		Status:  statusSuccess,
		Message: message,
	})
}

// respondError reports a failure in the envelope. Failures keep HTTP 200 so
// clients branch on the status field.
func respondError(w http.ResponseWriter, code, message string) {
	respondWithJSON(w, http.StatusOK, StatusResponse{
		Status:  statusError,
		Message: message,
		Code:    code,
	})
}

func respondInvalidRequest(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusBadRequest, StatusResponse{
		Status:  statusError,
		Message: "Invalid request body",
		Code:    CodeInvalidRequest,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
