package http

import (
	"net/http"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

type AuthHandler struct {
	authUC usecase.AuthUC
	logger logger.Logger
}

func NewAuthHandler(authUC usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUC: authUC, logger: logger}
}

// login
//
//	@Summary		Вход пользователя
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Учётные данные"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authUC.Login(r.Context(), &usecase.LoginReq{Username: req.Username, Password: req.Password})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSessionResponse(session))
}

// logout
//
//	@Summary	Выход пользователя
//	@Tags		auth
//	@Security	BearerAuth
//	@Success	204
//	@Router		/auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authUC.Logout(r.Context(), bearerToken(r)); err != nil {
		h.logger.Errorf(err, "logout failed")
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
