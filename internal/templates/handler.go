package templates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches row-template routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/row-templates", h.list)
	rg.POST("/row-templates", h.create)
	rg.GET("/row-templates/:templateId", h.get)
	rg.PUT("/row-templates/:templateId", h.update)
	rg.DELETE("/row-templates/:templateId", h.remove)
}

type createTemplateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsActive    *bool    `json:"isActive"`
	Columns     []Column `json:"columns"`
}

func (h *Handler) create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	tmpl, err := h.Svc.Create(c.Request.Context(), req.Name, req.Description, isActive, req.Columns)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "template name and typed columns are required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create template", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, tmpl)
}

func (h *Handler) list(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	tmpls, err := h.Svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list templates", nil)
		return
	}
	if tmpls == nil {
		tmpls = []Template{}
	}
	respond.OK(c, tmpls)
}

func (h *Handler) get(c *gin.Context) {
	tmpl, err := h.Svc.Get(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "template id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch template", nil)
		}
		return
	}
	respond.OK(c, tmpl)
}

type updateTemplateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"isActive"`
	Columns     []Column `json:"columns"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	tmpl, err := h.Svc.Update(c.Request.Context(), c.Param("templateId"), UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Columns:     req.Columns,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid template fields", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update template", nil)
		}
		return
	}
	respond.OK(c, tmpl)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("templateId")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete template", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
