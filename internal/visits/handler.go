package visits

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

// RegisterRoutes attaches visit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/visits/check-in", h.checkIn)
	rg.GET("/visits", h.list)
}

type checkInRequest struct {
	Kind            string `json:"kind"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	TimeSlot        string `json:"timeSlot"`
	FingerprintType string `json:"fingerprintType"`
	Notes           string `json:"notes"`
}

func (h *Handler) checkIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	visit, err := h.Svc.CheckIn(c.Request.Context(), CheckInInput{
		Kind:            req.Kind,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		TimeSlot:        req.TimeSlot,
		FingerprintType: req.FingerprintType,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record visit", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, visit)
}

func (h *Handler) list(c *gin.Context) {
	visitsList, err := h.Svc.List(c.Request.Context(), c.Query("kind"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list visits", nil)
		}
		return
	}
	if visitsList == nil {
		visitsList = []Visit{}
	}
	respond.OK(c, visitsList)
}
