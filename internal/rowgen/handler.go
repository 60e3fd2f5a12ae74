package rowgen

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/shared/server/respond"
	"intake-backend/internal/templates"
)

// TemplateGetter resolves the template a row is generated against.
type TemplateGetter interface {
	Get(ctx context.Context, templateID string) (templates.Template, error)
}

// Handler serves ad-hoc row generation unconnected to a session.
type Handler struct {
	Templates TemplateGetter
}

// NewHandler constructs a Handler.
func NewHandler(src TemplateGetter) *Handler {
	return &Handler{Templates: src}
}

// RegisterRoutes attaches the generate-row route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/row-templates/generate-row", h.generateRow)
}

type generateRowRequest struct {
	TemplateID string            `json:"template_id"`
	Data       map[string]string `json:"data"`
}

type generateRowResponse struct {
	RowText  string   `json:"row_text"`
	RowArray []string `json:"row_array"`
}

// generateRow is the ad-hoc row generation contract: pure given the template,
// the caller data and the current wall clock.
func (h *Handler) generateRow(c *gin.Context) {
	var req generateRowRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TemplateID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "template_id is required", nil)
		return
	}

	tmpl, err := h.Templates.Get(c.Request.Context(), req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch template", nil)
		}
		return
	}

	rowText, rowArray, err := Generate(tmpl, req.Data, Context{Now: time.Now().UTC()})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyTemplate):
			respond.Error(c, http.StatusBadRequest, "validation_error", "template has no columns", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate row", nil)
		}
		return
	}

	respond.OK(c, generateRowResponse{RowText: rowText, RowArray: rowArray})
}
