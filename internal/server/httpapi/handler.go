package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/validation"
	"github.com/go-chi/chi/v5"
)

// AvatarFormField is the multipart field carrying the upload.
const AvatarFormField = "avatar"

// rememberFlag asks for a token without expiry. Older clients send it as
// "expiresIn"; either key set to true is enough.
type rememberFlag struct {
	Remember  bool `json:"remember"`
	ExpiresIn bool `json:"expiresIn"`
}

func (f rememberFlag) noExpiry() bool {
	return f.Remember || f.ExpiresIn
}

type signupRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	rememberFlag
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	rememberFlag
}

type updatePasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

type deleteRequest struct {
	Password string `json:"password"`
}

// decodeJSON reads a JSON body into dst. An empty body is accepted only
// when allowEmpty is set.
func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	a.respondError(w, r, http.StatusBadRequest, MsgInvalidRequest)
	return false
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !a.decodeJSON(w, r, &req, false) {
		return
	}

	res, err := a.users.Signup(r.Context(), req.UserName, req.Email, req.Password, req.noExpiry())
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, AuthResponse{PublicUser: res.User, Token: res.Token})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decodeJSON(w, r, &req, false) {
		return
	}

	res, err := a.users.Login(r.Context(), req.UserName, req.Password, req.noExpiry())
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, AuthResponse{PublicUser: res.User, Token: res.Token})
}

func (a *API) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := a.users.GetAvatar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.logger.Warn(r.Context(), "Failed to write avatar", "error", err)
	}
}

func (a *API) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := a.users.Authorize(r.Context(), userID)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, UserNameResponse{UserName: user.UserName})
}

func (a *API) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
		a.logger.Warn(r.Context(), "Avatar upload rejected", "error", err)
		a.respondError(w, r, http.StatusBadRequest, common.GenericMessage)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, validation.MsgFieldsRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.respondError(w, r, http.StatusBadRequest, common.GenericMessage)
		return
	}

	user, err := a.users.UpdateAvatar(r.Context(), userID, data, header.Header.Get("Content-Type"))
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, UserNameResponse{UserName: user.UserName})
}

func (a *API) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req updatePasswordRequest
	if !a.decodeJSON(w, r, &req, false) {
		return
	}

	user, err := a.users.UpdatePassword(r.Context(), userID, req.Password, req.NewPassword)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, UserNameResponse{UserName: user.UserName})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req deleteRequest
	if !a.decodeJSON(w, r, &req, true) {
		return
	}

	user, err := a.users.DeleteUser(r.Context(), userID, req.Password)
	if err != nil {
		a.respondServiceError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, UserNameResponse{UserName: user.UserName})
}
