package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/collections"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
)

func (h *Handler) collectionsFail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, collections.ErrCollectionGone):
		common.Fail(c, http.StatusNotFound, "collection not found")
	case errors.Is(err, collections.ErrMantraGone):
		common.Fail(c, http.StatusNotFound, "mantra not found")
	case errors.Is(err, collections.ErrNotOwner):
		common.Fail(c, http.StatusForbidden, "not your collection")
	case errors.Is(err, collections.ErrEmptyName), errors.Is(err, collections.ErrSavedImmutable):
		common.Fail(c, http.StatusBadRequest, err.Error())
	default:
		h.logError(c, op, err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) ListCollections(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	cols, err := h.CollectionsSvc.ListForUser(c.Request.Context(), uid)
	if err != nil {
		h.collectionsFail(c, "collection list failed", err)
		return
	}
	common.OK(c, gin.H{"collections": cols})
}

type createCollectionReq struct {
	Name string `json:"name" binding:"required,max=128"`
}

func (h *Handler) CreateCollection(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	var req createCollectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "collection name is required")
		return
	}
	col, err := h.CollectionsSvc.Create(c.Request.Context(), uid, req.Name)
	if err != nil {
		h.collectionsFail(c, "collection create failed", err)
		return
	}
	common.Created(c, gin.H{"collection": col})
}

func (h *Handler) GetCollection(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	col, mantras, err := h.CollectionsSvc.Mantras(c.Request.Context(), id, uid)
	if err != nil {
		h.collectionsFail(c, "collection get failed", err)
		return
	}
	common.OK(c, gin.H{"collection": col, "mantras": mantras})
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CollectionsSvc.Delete(c.Request.Context(), id, uid); err != nil {
		h.collectionsFail(c, "collection delete failed", err)
		return
	}
	common.OKMessage(c, "collection deleted", nil)
}

type addToCollectionReq struct {
	MantraID uint64 `json:"mantra_id" binding:"required"`
}

func (h *Handler) AddToCollection(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addToCollectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "mantra_id is required")
		return
	}
	added, err := h.CollectionsSvc.AddMantra(c.Request.Context(), id, uid, req.MantraID)
	if err != nil {
		h.collectionsFail(c, "collection add failed", err)
		return
	}
	if added {
		common.Created(c, gin.H{"added": true})
		return
	}
	common.OKMessage(c, "already in collection", gin.H{"added": false})
}

func (h *Handler) RemoveFromCollection(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mantraID, ok := parseIDParam(c, "mantra_id")
	if !ok {
		return
	}
	if err := h.CollectionsSvc.RemoveMantra(c.Request.Context(), id, uid, mantraID); err != nil {
		h.collectionsFail(c, "collection remove failed", err)
		return
	}
	common.OKMessage(c, "removed from collection", nil)
}

// SaveMantra puts a mantra into the caller's saved collection, creating the
// collection the first time. Saving twice answers "already saved".
func (h *Handler) SaveMantra(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	saved, err := h.CollectionsSvc.SaveMantra(c.Request.Context(), uid, id)
	if err != nil {
		h.collectionsFail(c, "mantra save failed", err)
		return
	}
	if saved {
		common.Created(c, gin.H{"saved": true})
		return
	}
	common.OKMessage(c, "already saved", gin.H{"saved": true})
}
