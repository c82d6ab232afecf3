package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/chat"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
)

func (h *Handler) chatFail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrSelfConversation),
		errors.Is(err, chat.ErrEmptyContent),
		errors.Is(err, chat.ErrReplyWrongThread),
		errors.Is(err, chat.ErrEmptyEmoji):
		common.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrNotParticipant):
		common.Fail(c, http.StatusForbidden, "you are not a participant of this conversation")
	case errors.Is(err, chat.ErrConversationGone):
		common.Fail(c, http.StatusNotFound, "conversation not found")
	case errors.Is(err, chat.ErrMessageGone):
		common.Fail(c, http.StatusNotFound, "message not found")
	case errors.Is(err, chat.ErrReplyGone):
		common.Fail(c, http.StatusNotFound, "reply target message not found")
	default:
		h.logError(c, op, err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	summaries, err := h.ChatSvc.ListForUser(c.Request.Context(), uid)
	if err != nil {
		h.chatFail(c, "conversation list failed", err)
		return
	}
	common.OK(c, gin.H{"conversations": summaries})
}

type createConversationReq struct {
	ParticipantID uint64 `json:"participant_id" binding:"required"`
}

// CreateConversation finds or creates the 1:1 conversation with the given
// participant: 201 for a fresh conversation, 200 when one already existed.
func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "participant_id is required")
		return
	}

	conv, created, err := h.ChatSvc.FindOrCreate(c.Request.Context(), uid, req.ParticipantID)
	if err != nil {
		h.chatFail(c, "conversation create failed", err)
		return
	}
	if created {
		common.Created(c, gin.H{"conversation": conv})
		return
	}
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) GetConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	conv, err := h.ChatSvc.Get(c.Request.Context(), id, uid)
	if err != nil {
		h.chatFail(c, "conversation get failed", err)
		return
	}
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) ListConversationMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msgs, err := h.ChatSvc.ListMessages(c.Request.Context(), id, uid)
	if err != nil {
		h.chatFail(c, "message list failed", err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

type sendMessageReq struct {
	ConversationID   uint64  `json:"conversation_id" binding:"required"`
	Content          string  `json:"content" binding:"required"`
	ReplyToMessageID *uint64 `json:"reply_to_message_id"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "conversation_id and content are required")
		return
	}

	msg, err := h.ChatSvc.Send(c.Request.Context(), req.ConversationID, uid, req.Content, req.ReplyToMessageID)
	if err != nil {
		h.chatFail(c, "message send failed", err)
		return
	}
	common.Created(c, gin.H{"message": msg})
}

// MarkConversationRead flips all messages from the other participant to read.
// Safe to call repeatedly.
func (h *Handler) MarkConversationRead(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ChatSvc.MarkRead(c.Request.Context(), id, uid); err != nil {
		h.chatFail(c, "mark read failed", err)
		return
	}
	common.OKMessage(c, "conversation marked read", nil)
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ChatSvc.Delete(c.Request.Context(), id, uid); err != nil {
		h.chatFail(c, "conversation delete failed", err)
		return
	}
	common.OKMessage(c, "conversation deleted", nil)
}

type reactionReq struct {
	Emoji string `json:"emoji" binding:"required"`
}

// ToggleReaction answers 201 when the reaction was added and 200 when the
// same call removed it; callers must inspect the response to learn which.
func (h *Handler) ToggleReaction(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "emoji is required")
		return
	}

	added, err := h.ChatSvc.ToggleReaction(c.Request.Context(), id, uid, req.Emoji)
	if err != nil {
		h.chatFail(c, "reaction toggle failed", err)
		return
	}
	if added {
		common.Created(c, gin.H{"reaction": "added"})
		return
	}
	common.OKMessage(c, "reaction removed", gin.H{"reaction": "removed"})
}

func (h *Handler) GetReactions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	groups, err := h.ChatSvc.ReactionCounts(c.Request.Context(), id, uid)
	if err != nil {
		h.chatFail(c, "reaction list failed", err)
		return
	}
	common.OK(c, gin.H{"reactions": groups})
}
