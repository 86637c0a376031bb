package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-api-registration/internal/application/registration"
	"github.com/go-api-registration/internal/domain"
	"github.com/go-api-registration/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RegistrationHandler serves sign-up and email confirmation.
type RegistrationHandler struct {
	svc registration.Service
	log *zap.Logger
}

func NewRegistrationHandler(svc registration.Service, log *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, log: log}
}

// Register creates a searcher account. Success has no body.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, typeErrs, err := decodeRegister(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedRequest)
		return
	}
	if len(typeErrs) > 0 {
		writeFieldErrors(w, typeErrs)
		return
	}
	if _, err := h.svc.Register(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// decodeRegister reads a sign-up body. Fields present with a non-string value
// are reported per field; only a body that is not a JSON object is malformed.
func decodeRegister(r *http.Request) (domain.RegisterRequest, validate.FieldErrors, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return domain.RegisterRequest{}, nil, err
	}
	var req domain.RegisterRequest
	fields := []struct {
		name string
		dst  *string
	}{
		{registration.FieldFullName, &req.FullName},
		{registration.FieldEmail, &req.Email},
		{registration.FieldPassword, &req.Password},
		{registration.FieldConfirmPassword, &req.ConfirmPassword},
	}
	errs := validate.FieldErrors{}
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		// null leaves the field empty.
		if err := json.Unmarshal(v, f.dst); err != nil {
			errs.Add(f.name, validate.FieldError{Code: registration.CodeInvalidData, Message: "Not a valid string."})
		}
	}
	return req, errs, nil
}

// Confirm consumes the token carried in the link and confirms the email.
func (h *RegistrationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Confirm(r.Context(), chi.URLParam(r, "token"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email confirmed"})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeTokenNotFound)
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusGone, codeTokenExpired)
	default:
		h.fail(w, r, err)
	}
}

// Resend always answers 202 for a well-formed address so that callers cannot
// learn which emails are registered.
func (h *RegistrationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Resend(r.Context(), req.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "if the address is pending confirmation, a new link has been sent"})
}

// fail maps validation failures to 400 and logs anything else as a 500.
func (h *RegistrationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validate.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeFieldErrors(w, fieldErrs)
		return
	}
	h.log.Error("request failed",
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, codeServerError)
}
