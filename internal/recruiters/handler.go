package recruiters

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

// RegisterRoutes attaches recruiter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recruiters", h.list)
	rg.GET("/recruiters/:recruiterId/status", h.status)
	rg.PATCH("/recruiters/:recruiterId/status", h.updateStatus)
}

func (h *Handler) list(c *gin.Context) {
	recs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list recruiters", nil)
		return
	}
	if recs == nil {
		recs = []Recruiter{}
	}
	respond.OK(c, recs)
}

func (h *Handler) status(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), c.Param("recruiterId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "recruiter not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch recruiter", nil)
		}
		return
	}
	respond.OK(c, gin.H{"id": rec.ID, "name": rec.Name, "status": rec.Status})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.SetStatus(c.Request.Context(), c.Param("recruiterId"), req.Status); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "recruiter not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "status must be available or busy", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update status", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
