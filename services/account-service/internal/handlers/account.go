package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgRegisterFieldsRequired = "name, email, business type, businessName, address all fields are required"
	msgAllFieldsRequired      = "All fields are required"
	msgInvalidEmail           = "Invalid email format"
	msgRegistered             = "Your account has been successfully created."
	msgInvalidCredentials     = "Invalid email or password. Please try again later"
	msgLoginOK                = "Login successful"
	msgUserNotFound           = "User not found"
	msgUserData               = "User data retrieved successfully"
	msgUserUpdated            = "Your details updated successfully!"
	msgSamePassword           = "Current password and new password should not be same"
	msgPasswordMismatch       = "New password and confirm password do not match"
	msgWrongPassword          = "Current password is incorrect"
	msgPasswordUpdated        = "Password updated successfully"

	roleUser = "user"
)

type OwnerStore interface {
	Create(ctx context.Context, o storage.Owner) error
	GetByEmail(ctx context.Context, email string) (storage.Owner, error)
	GetByID(ctx context.Context, id string) (storage.Owner, error)
	UpdateProfile(ctx context.Context, o storage.Owner) (storage.Owner, error)
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
}

type AccountHandler struct {
	owners   OwnerStore
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
	validate *validator.Validate
}

func NewAccountHandler(owners OwnerStore, secret string, tokenTTL time.Duration, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		owners:   owners,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
		logger:   logger,
		validate: newValidator(),
	}
}

type registerRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobilenu" validate:"required"`
	MobileAlias  string `json:"mobileNumber" validate:"-"`
	BusinessType string `json:"businessType" validate:"required"`
	BusinessName string `json:"businessName" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	MobileNumber string   `json:"mobilenu" validate:"required"`
	MobileAlias  string   `json:"mobileNumber" validate:"-"`
	BusinessType string   `json:"businessType" validate:"required"`
	BusinessName string   `json:"businessName" validate:"required"`
	Address      string   `json:"address" validate:"required"`
	ItemList     []string `json:"itemList" validate:"required"`
	SessionList  []string `json:"sessionList" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type ownerView struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobilenu"`
	BusinessType string    `json:"businessType"`
	BusinessName string    `json:"businessName"`
	Address      string    `json:"address"`
	ItemList     []string  `json:"itemList"`
	SessionList  []string  `json:"sessionList"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newOwnerView(o storage.Owner) ownerView {
	return ownerView{
		ID:           o.ID,
		Name:         o.Name,
		Email:        o.Email,
		MobileNumber: o.MobileNumber,
		BusinessType: o.BusinessType,
		BusinessName: o.BusinessName,
		Address:      o.Address,
		ItemList:     nonNil(o.ItemList),
		SessionList:  nonNil(o.SessionList),
		Role:         o.Role,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	req.MobileNumber = firstNonEmpty(req.MobileNumber, req.MobileAlias)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		if failedTag(err) == "email" {
			httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidEmail)
			return
		}
		httpx.WriteMessage(w, http.StatusBadRequest, msgRegisterFieldsRequired)
		return
	}
	if problem := passwordProblem(req.Password); problem != "" {
		httpx.WriteMessage(w, http.StatusBadRequest, problem)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	now := h.now().UTC()
	owner := storage.Owner{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         roleUser,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		BusinessType: strings.TrimSpace(req.BusinessType),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Address:      strings.TrimSpace(req.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.owners.Create(r.Context(), owner); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			httpx.WriteMessage(w, http.StatusBadRequest, emailTakenMessage(req.Email))
			return
		}
		h.serverError(w, r, err)
		return
	}
	httpx.Annotate(r.Context(), "owner_id", owner.ID)
	httpx.WriteMessage(w, http.StatusOK, msgRegistered)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	owner, err := h.owners.GetByEmail(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := verifyPassword(owner.PasswordHash, req.Password); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	token, err := h.issueToken(owner)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	httpx.Annotate(r.Context(), "owner_id", owner.ID)
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"token":   token,
		"success": true,
		"message": msgLoginOK,
		"role":    owner.Role,
		"access":  true,
	})
}

func (h *AccountHandler) GetUserData(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owners.GetByID(r.Context(), auth.OwnerID(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgUserData,
		"data":    newOwnerView(owner),
	})
}

func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	req.MobileNumber = firstNonEmpty(req.MobileNumber, req.MobileAlias)
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		if failedTag(err) == "email" {
			httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidEmail)
			return
		}
		httpx.WriteMessage(w, http.StatusBadRequest, msgAllFieldsRequired)
		return
	}

	updated, err := h.owners.UpdateProfile(r.Context(), storage.Owner{
		ID:           auth.OwnerID(r.Context()),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		BusinessType: strings.TrimSpace(req.BusinessType),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Address:      strings.TrimSpace(req.Address),
		ItemList:     req.ItemList,
		SessionList:  req.SessionList,
		UpdatedAt:    h.now().UTC(),
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	case errors.Is(err, storage.ErrEmailTaken):
		httpx.WriteMessage(w, http.StatusBadRequest, emailTakenMessage(req.Email))
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgUserUpdated,
		"data":    newOwnerView(updated),
	})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgAllFieldsRequired)
		return
	}
	if req.CurrentPassword == req.NewPassword {
		httpx.WriteMessage(w, http.StatusBadRequest, msgSamePassword)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		httpx.WriteMessage(w, http.StatusBadRequest, msgPasswordMismatch)
		return
	}
	if problem := passwordProblem(req.NewPassword); problem != "" {
		httpx.WriteMessage(w, http.StatusBadRequest, problem)
		return
	}

	ownerID := auth.OwnerID(r.Context())
	owner, err := h.owners.GetByID(r.Context(), ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := verifyPassword(owner.PasswordHash, req.CurrentPassword); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgWrongPassword)
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := h.owners.UpdatePassword(r.Context(), ownerID, hash, h.now().UTC()); err != nil {
		h.serverError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, msgPasswordUpdated)
}

// issueToken signs a token whose kind follows the owner's current business type.
func (h *AccountHandler) issueToken(o storage.Owner) (string, error) {
	now := h.now()
	return auth.SignHS256(auth.Claims{
		Sub:          o.ID,
		Role:         o.Role,
		BusinessType: o.BusinessType,
		Kind:         auth.KindForBusinessType(o.BusinessType),
		Iat:          now.Unix(),
		Exp:          now.Add(h.tokenTTL).Unix(),
	}, h.secret)
}

func (h *AccountHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "account request failed", "path", r.URL.Path, "err", err)
	httpx.WriteServerError(w, err)
}

func emailTakenMessage(email string) string {
	return fmt.Sprintf("User with the email %s already exists. Please provide another email", email)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
