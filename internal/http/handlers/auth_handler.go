// README: Login handlers: password and Google SSO exchange for a connection token.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"routesync/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

type loginRequest struct {
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request")
		return
	}
	if !h.auth.ValidatePassword(req.Password) {
		writeError(c, http.StatusUnauthorized, "invalid password")
		return
	}
	token, err := h.auth.GenerateToken()
	if err != nil {
		log.Printf("http: generate token: %v", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, loginResponse{Token: token})
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request")
		return
	}
	ok, err := h.auth.VerifyGoogleIDToken(c.Request.Context(), req.Credential)
	if err != nil {
		log.Printf("http: google auth: %v", err)
		writeError(c, http.StatusBadRequest, "authentication failed")
		return
	}
	if !ok {
		writeError(c, http.StatusUnauthorized, "invalid google token")
		return
	}
	token, err := h.auth.GenerateToken()
	if err != nil {
		log.Printf("http: generate token: %v", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, loginResponse{Token: token})
}
