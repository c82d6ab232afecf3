package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/catalog"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
)

func (h *Handler) catalogFail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrMantraGone):
		common.Fail(c, http.StatusNotFound, "mantra not found")
	case errors.Is(err, catalog.ErrCategoryGone):
		common.Fail(c, http.StatusNotFound, "category not found")
	case errors.Is(err, catalog.ErrEmptyText), errors.Is(err, catalog.ErrEmptyName):
		common.Fail(c, http.StatusBadRequest, err.Error())
	default:
		h.logError(c, op, err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// requireAdmin gates catalog writes on the configured admin email set.
func (h *Handler) requireAdmin(c *gin.Context) bool {
	admin, err := h.isAdmin(c)
	if err != nil {
		h.logError(c, "admin check failed", err)
		common.Fail(c, http.StatusInternalServerError, "internal server error")
		return false
	}
	if !admin {
		common.Fail(c, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.CatalogSvc.ListCategories(c.Request.Context())
	if err != nil {
		h.catalogFail(c, "category list failed", err)
		return
	}
	common.OK(c, gin.H{"categories": cats})
}

type categoryReq struct {
	Name string `json:"name" binding:"required,max=64"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "category name is required")
		return
	}
	cat, err := h.CatalogSvc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		h.catalogFail(c, "category create failed", err)
		return
	}
	common.Created(c, gin.H{"category": cat})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "category name is required")
		return
	}
	cat, err := h.CatalogSvc.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		h.catalogFail(c, "category update failed", err)
		return
	}
	common.OK(c, gin.H{"category": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CatalogSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		h.catalogFail(c, "category delete failed", err)
		return
	}
	common.OKMessage(c, "category deleted", nil)
}

func (h *Handler) ListMantras(c *gin.Context) {
	var categoryID *uint64
	if v := c.Query("category_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &n
	}

	mantras, err := h.CatalogSvc.ListMantras(c.Request.Context(), optionalUserID(c), categoryID)
	if err != nil {
		h.catalogFail(c, "mantra list failed", err)
		return
	}
	common.OK(c, gin.H{"mantras": mantras})
}

func (h *Handler) GetMantra(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.CatalogSvc.GetMantra(c.Request.Context(), optionalUserID(c), id)
	if err != nil {
		h.catalogFail(c, "mantra get failed", err)
		return
	}
	common.OK(c, gin.H{"mantra": view})
}

type mantraReq struct {
	Text       string  `json:"text"`
	Author     string  `json:"author"`
	CategoryID *uint64 `json:"category_id"`
}

func (h *Handler) CreateMantra(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req mantraReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := h.CatalogSvc.CreateMantra(c.Request.Context(), req.Text, req.Author, req.CategoryID)
	if err != nil {
		h.catalogFail(c, "mantra create failed", err)
		return
	}
	common.Created(c, gin.H{"mantra": m})
}

func (h *Handler) UpdateMantra(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req mantraReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := h.CatalogSvc.UpdateMantra(c.Request.Context(), id, req.Text, req.Author, req.CategoryID)
	if err != nil {
		h.catalogFail(c, "mantra update failed", err)
		return
	}
	common.OK(c, gin.H{"mantra": m})
}

// DeleteMantra soft-deletes: the row is flagged, not removed.
func (h *Handler) DeleteMantra(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CatalogSvc.DeleteMantra(c.Request.Context(), id); err != nil {
		h.catalogFail(c, "mantra delete failed", err)
		return
	}
	common.OKMessage(c, "mantra deleted", nil)
}

// ToggleLike adds or removes the caller's like; the response says which.
func (h *Handler) ToggleLike(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	added, err := h.CatalogSvc.ToggleLike(c.Request.Context(), uid, id)
	if err != nil {
		h.catalogFail(c, "like toggle failed", err)
		return
	}
	if added {
		common.OKMessage(c, "liked", gin.H{"liked": true})
		return
	}
	common.OKMessage(c, "unliked", gin.H{"liked": false})
}
