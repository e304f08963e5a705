package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foyerhq/foyer/internal/services/kiosk"
)

// Handler exposes the kiosk flows over HTTP. Responses never echo tokens or
// phone numbers back, and error bodies stay generic; detail goes to the log.
type Handler struct {
	log *zap.Logger
	uc  *kiosk.Usecase
}

func NewHandler(log *zap.Logger, uc *kiosk.Usecase) *Handler {
	return &Handler{log: log, uc: uc}
}

func (h *Handler) Register(r gin.IRouter, guard *OriginGuard) {
	v1 := r.Group("/v1/kiosk", guard.Middleware())
	v1.POST("/sign-ins", h.signIn)
	v1.POST("/sign-outs", h.signOut)
}

type signInRequest struct {
	VisitorName string `json:"visitorName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
}

type signInResponse struct {
	SignInID     string    `json:"signInId"`
	SignOutToken string    `json:"signOutToken"`
	TokenExpires time.Time `json:"tokenExpires"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitorName and phone are required"})
		return
	}

	res, err := h.uc.SignIn(c.Request.Context(), req.VisitorName, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, kiosk.ErrNameRequired), errors.Is(err, kiosk.ErrPhoneRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("sign-in failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, signInResponse{
		SignInID:     res.SignInID,
		SignOutToken: res.SignOutToken,
		TokenExpires: res.TokenExpires,
	})
}

type signOutRequest struct {
	Token string `json:"token" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

func (h *Handler) signOut(c *gin.Context) {
	var req signOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and phone are required"})
		return
	}

	id, err := h.uc.SignOut(c.Request.Context(), req.Token, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, kiosk.ErrInvalidLink):
			c.JSON(http.StatusBadRequest, gin.H{"error": kiosk.ErrInvalidLink.Error()})
		case errors.Is(err, kiosk.ErrPhoneMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": kiosk.ErrPhoneMismatch.Error()})
		case errors.Is(err, kiosk.ErrLinkExpired):
			c.JSON(http.StatusGone, gin.H{"error": kiosk.ErrLinkExpired.Error()})
		case errors.Is(err, kiosk.ErrAlreadySignedOut):
			c.JSON(http.StatusConflict, gin.H{"error": kiosk.ErrAlreadySignedOut.Error()})
		default:
			h.log.Error("sign-out failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"signInId": id})
}
