package sessions

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/info-sessions/register", h.register)
	rg.GET("/info-sessions", h.list)
	rg.GET("/info-sessions/live", h.live)
	rg.GET("/info-sessions/completed", h.completed)
	rg.GET("/info-sessions/:sessionId", h.get)
	rg.PATCH("/info-sessions/:sessionId/steps/:stepName/complete", h.completeStep)

	rg.GET("/recruiters/:recruiterId/assigned-sessions", h.assigned)
	rg.POST("/recruiters/:recruiterId/sessions/:sessionId/start", h.start)
	rg.POST("/recruiters/:recruiterId/sessions/:sessionId/complete", h.complete)
	rg.PUT("/recruiters/:recruiterId/sessions/:sessionId/documents", h.updateDocuments)
}

type registerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ZipCode     string `json:"zipCode"`
	SessionType string `json:"sessionType"`
	TimeSlot    string `json:"timeSlot"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sess, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		ZipCode:     req.ZipCode,
		SessionType: req.SessionType,
		TimeSlot:    req.TimeSlot,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, sess)
}

func (h *Handler) list(c *gin.Context) {
	skip := 0
	limit := 100
	if v := c.Query("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			skip = parsed
		}
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	sessions, err := h.Svc.List(c.Request.Context(), c.Query("status"), skip, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list sessions", nil)
		}
		return
	}
	respond.OK(c, emptyIfNil(sessions))
}

func (h *Handler) live(c *gin.Context) {
	sessions, err := h.Svc.Live(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list live sessions", nil)
		return
	}
	respond.OK(c, emptyIfNil(sessions))
}

func (h *Handler) completed(c *gin.Context) {
	sessions, err := h.Svc.Completed(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list completed sessions", nil)
		return
	}
	respond.OK(c, emptyIfNil(sessions))
}

func (h *Handler) get(c *gin.Context) {
	sess, err := h.Svc.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "session id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch session", nil)
		}
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) completeStep(c *gin.Context) {
	sess, err := h.Svc.CompleteStep(c.Request.Context(), c.Param("sessionId"), c.Param("stepName"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
		case errors.Is(err, ErrWrongState):
			respond.Error(c, http.StatusConflict, "wrong_state", "session already completed", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to complete step", nil)
		}
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) assigned(c *gin.Context) {
	sessions, err := h.Svc.AssignedTo(c.Request.Context(), c.Param("recruiterId"), c.Query("status"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assigned sessions", nil)
		}
		return
	}
	respond.OK(c, emptyIfNil(sessions))
}

func (h *Handler) start(c *gin.Context) {
	sess, err := h.Svc.Start(c.Request.Context(), c.Param("recruiterId"), c.Param("sessionId"))
	if err != nil {
		h.transitionError(c, err, "failed to start session")
		return
	}
	respond.OK(c, sess)
}

type completeRequest struct {
	Documents Ledger `json:"documents"`
}

func (h *Handler) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sess, err := h.Svc.Complete(c.Request.Context(), c.Param("recruiterId"), c.Param("sessionId"), CompleteInput{Ledger: req.Documents})
	if err != nil {
		h.transitionError(c, err, "failed to complete session")
		return
	}
	respond.OK(c, sess)
}

type updateDocumentsRequest struct {
	Documents     Ledger            `json:"documents"`
	RowData       map[string]string `json:"rowData"`
	RegenerateRow bool              `json:"regenerateRow"`
}

func (h *Handler) updateDocuments(c *gin.Context) {
	var req updateDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sess, err := h.Svc.Update(c.Request.Context(), c.Param("recruiterId"), c.Param("sessionId"), UpdateInput{
		Ledger:        req.Documents,
		RowData:       req.RowData,
		RegenerateRow: req.RegenerateRow,
	})
	if err != nil {
		h.transitionError(c, err, "failed to update session documents")
		return
	}
	respond.OK(c, sess)
}

// transitionError maps lifecycle errors: a lost race or an un-owned session
// both surface as a 409 so callers can refresh and retry.
func (h *Handler) transitionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, ErrWrongState):
		respond.Error(c, http.StatusConflict, "wrong_state", "session is not in a state that allows this action", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func emptyIfNil(sessions []Session) []Session {
	if sessions == nil {
		return []Session{}
	}
	return sessions
}
