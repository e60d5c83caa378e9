package v1

import (
	"mime/multipart"
	"net/http"

	"github.com/clearhaven/claimdesk/internal/config"
	"github.com/clearhaven/claimdesk/internal/ingest"
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/gin-gonic/gin"
)

const recentUploadsLimit = 10

type UploadHandler struct {
	importSvc *service.ImportService
	cfg       config.ImportConfig
}

func NewUploadHandler(importSvc *service.ImportService, cfg config.ImportConfig) *UploadHandler {
	return &UploadHandler{importSvc: importSvc, cfg: cfg}
}

// Import runs one import batch from an uploaded claims file and details
// file. Both files are required; mode defaults to append.
//
//	POST /api/v1/uploads (multipart: claims_file, details_file, mode)
func (h *UploadHandler) Import(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	mode, err := ingest.ParseMode(c.DefaultPostForm("mode", string(ingest.ModeAppend)))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	claimsFile, claimsHeader, ok := h.formFile(c, "claims_file")
	if !ok {
		return
	}
	defer claimsFile.Close()

	detailsFile, detailsHeader, ok := h.formFile(c, "details_file")
	if !ok {
		return
	}
	defer detailsFile.Close()

	summary, err := h.importSvc.ImportBatch(c.Request.Context(), ingest.Batch{
		Claims:      claimsFile,
		Details:     detailsFile,
		ClaimsName:  claimsHeader.Filename,
		DetailsName: detailsHeader.Filename,
		Mode:        mode,
		UserID:      &identity.UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, summary)
}

// Recent lists the latest import audit records.
func (h *UploadHandler) Recent(c *gin.Context) {
	uploads, err := h.importSvc.RecentUploads(c.Request.Context(), recentUploadsLimit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, uploads)
}

func (h *UploadHandler) formFile(c *gin.Context, field string) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing or unreadable form file "+field)
		return nil, nil, false
	}
	if header.Size > h.cfg.MaxUploadBytes {
		file.Close()
		respondError(c, http.StatusRequestEntityTooLarge, field+" exceeds the upload size limit")
		return nil, nil, false
	}
	return file, header, true
}
