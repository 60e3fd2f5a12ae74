package exclusions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"intake-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches exclusion-list routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exclusion-list", h.list)
	rg.GET("/exclusion-list/check", h.check)
	rg.POST("/exclusion-list/upload", h.upload)
	rg.DELETE("/exclusion-list", h.clear)
}

type checkResponse struct {
	IsInExclusionList bool   `json:"isInExclusionList"`
	Match             *Entry `json:"match,omitempty"`
}

func (h *Handler) check(c *gin.Context) {
	firstName := c.Query("firstName")
	lastName := c.Query("lastName")
	if firstName == "" || lastName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "firstName and lastName are required", nil)
		return
	}

	entry, ok, err := h.Svc.Check(c.Request.Context(), firstName, lastName)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check exclusion list", nil)
		return
	}

	resp := checkResponse{IsInExclusionList: ok}
	if ok {
		resp.Match = &entry
	}
	respond.OK(c, resp)
}

func (h *Handler) list(c *gin.Context) {
	entries, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exclusion entries", nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	respond.OK(c, entries)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	result, err := h.Svc.Import(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import exclusion list", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.Svc.Clear(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear exclusion list", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
