package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
)

// TestNotification sends a push to the caller's own registered device.
func (h *Handler) TestNotification(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	err := h.NotifySvc.SendToUser(c.Request.Context(), uid, "MeMantra", "Push notifications are working.")
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrNoToken):
			common.Fail(c, http.StatusBadRequest, "no push token registered for this account")
		case errors.Is(err, notify.ErrInvalidToken):
			common.Fail(c, http.StatusBadRequest, "registered push token is invalid")
		default:
			h.logError(c, "test notification failed", err)
			common.Fail(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	common.OKMessage(c, "notification sent", nil)
}

type broadcastReq struct {
	Title string `json:"title" binding:"required,max=255"`
	Body  string `json:"body" binding:"required"`
}

// Broadcast fans a notification out to every registered device. Admin only.
// Reports per-recipient counts instead of failing the batch on one bad token.
func (h *Handler) Broadcast(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req broadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "title and body are required")
		return
	}

	sent, failed, err := h.NotifySvc.Broadcast(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		h.logError(c, "broadcast failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	common.OK(c, gin.H{"sent": sent, "failed": failed})
}
