package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch/apiserver/internal/auth"
	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/notify"
	"github.com/floodwatch/apiserver/internal/services"
	"github.com/floodwatch/apiserver/internal/store"
	"github.com/floodwatch/apiserver/types"
)

// ImageUploader uploads a local temp file and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, localPath string) (string, error)
}

// AuthHandler provides registration, login, profile, and password-reset
// endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenManager
	uploader    ImageUploader
	mailer      notify.Mailer
	appBaseURL  string
	log         logging.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	userService *services.UserService,
	tokens *auth.TokenManager,
	uploader ImageUploader,
	mailer notify.Mailer,
	appBaseURL string,
	log logging.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		uploader:    uploader,
		mailer:      mailer,
		appBaseURL:  appBaseURL,
		log:         log,
	}
}

// AuthRouter registers the /auth subtree. Registration itself lives at
// the top level; see server wiring.
func AuthRouter(r chi.Router, handler *AuthHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/login", handler.Login)
	r.With(authMiddleware).Get("/profile", handler.GetProfile)
	r.With(authMiddleware).Put("/profile", handler.UpdateProfile)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
}

// Register creates a new user account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")
	name := formValue(r, "name")
	location := formValue(r, "location")
	if email == "" || password == "" || name == "" || location == "" {
		writeError(w, http.StatusBadRequest, "email, password, name, and location are required")
		return
	}

	role := formValue(r, "role")
	if role == "" {
		role = types.RoleCustomer
	}
	if role != types.RoleCustomer && role != types.RoleAdmin {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	// Existence check is an optimization; the unique index is the
	// real guard against concurrent duplicates.
	if _, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error(r.Context(), "failed to check email", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		h.log.Error(r.Context(), "failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	imageURL, err := h.uploadImageField(r)
	if err != nil {
		h.log.Error(r.Context(), "failed to upload profile image", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hashed,
		ImageURL:     imageURL,
		PhoneNumber:  formValue(r, "phoneNumber"),
		Location:     location,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.log.Error(r.Context(), "failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := h.tokens.IssueSession(user)
	if err != nil {
		h.log.Error(r.Context(), "failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message: "registration successful",
		Token:   token,
		User:    user,
	})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid email or password")
			return
		}
		h.log.Error(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	}

	token, err := h.tokens.IssueSession(user)
	if err != nil {
		h.log.Error(r.Context(), "failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// GetProfile returns the current authenticated user.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies the provided subset of profile fields.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	name := formValue(r, "name")
	email := formValue(r, "email")
	phone := formValue(r, "phoneNumber")
	imagePath, err := saveUploadedImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	if name == "" && email == "" && phone == "" && imagePath == "" {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	user, err := h.currentUser(r)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if phone != "" {
		user.PhoneNumber = phone
	}
	if imagePath != "" {
		imageURL, err := h.uploader.UploadImage(r.Context(), imagePath)
		if err != nil {
			h.log.Error(r.Context(), "failed to upload profile image", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to upload image")
			return
		}
		user.ImageURL = imageURL
	}

	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.log.Error(r.Context(), "failed to update user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ForgotPassword issues a short-lived reset token and mails a reset
// link. Mail delivery is best-effort; the response stays generic.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	token, err := h.tokens.IssueReset(user.ID)
	if err != nil {
		h.log.Error(r.Context(), "failed to issue reset token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	link := h.appBaseURL + "/reset-password?token=" + token
	body := "A password reset was requested for your account.\r\n\r\n" +
		"Open the link below within 15 minutes to choose a new password:\r\n" + link
	if err := h.mailer.Send(r.Context(), user.Email, "Password reset", body); err != nil {
		h.log.Error(r.Context(), "failed to send reset mail", "user_id", user.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "a password reset link has been sent"})
}

// ResetPassword verifies a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "token and newPassword are required")
		return
	}

	userID, err := h.tokens.VerifyReset(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired token")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid or expired token")
			return
		}
		h.log.Error(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Error(r.Context(), "failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	user.PasswordHash = hashed

	if _, err := h.userService.Update(r.Context(), user); err != nil {
		h.log.Error(r.Context(), "failed to update password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}

func (h *AuthHandler) currentUser(r *http.Request) (types.User, error) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		return types.User{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return types.User{}, err
	}
	return h.userService.GetByID(r.Context(), id)
}

func (h *AuthHandler) uploadImageField(r *http.Request) (string, error) {
	path, err := saveUploadedImage(r)
	if err != nil {
		return "", err
	}
	return h.uploader.UploadImage(r.Context(), path)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    types.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
