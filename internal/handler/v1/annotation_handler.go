package v1

import (
	"github.com/clearhaven/claimdesk/internal/domain/annotation"
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type AnnotationHandler struct {
	annSvc *service.AnnotationService
}

func NewAnnotationHandler(annSvc *service.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annSvc: annSvc}
}

type addFlagRequest struct {
	FlagType string `json:"flag_type" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *AnnotationHandler) AddFlag(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}

	var req addFlagRequest
	if !bindJSON(c, &req) {
		return
	}

	flag, err := h.annSvc.AddFlag(
		c.Request.Context(),
		c.Param("claim_id"),
		identity.UserID,
		string(identity.Role),
		annotation.FlagType(req.FlagType),
		req.Reason,
		c.ClientIP(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, flag)
}

func (h *AnnotationHandler) RemoveFlag(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}

	flagID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.annSvc.RemoveFlag(c.Request.Context(), flagID, identity.UserID, string(identity.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"message": "flag removed"})
}

type addNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

func (h *AnnotationHandler) AddNote(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}

	var req addNoteRequest
	if !bindJSON(c, &req) {
		return
	}

	note, err := h.annSvc.AddNote(
		c.Request.Context(),
		c.Param("claim_id"),
		identity.UserID,
		string(identity.Role),
		req.Note,
		c.ClientIP(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, note)
}
