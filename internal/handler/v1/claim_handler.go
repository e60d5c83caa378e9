package v1

import (
	"net/http"
	"time"

	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/clearhaven/claimdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ClaimHandler struct {
	claimSvc *service.ClaimService
}

func NewClaimHandler(claimSvc *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimSvc: claimSvc}
}

// List returns a filtered, paginated claim list.
//
//	GET /api/v1/claims?search=&status=&insurer=&date_from=&date_to=&min_amount=&max_amount=&flagged=&page=&page_size=
func (h *ClaimHandler) List(c *gin.Context) {
	q := &claim.ListClaimsQuery{
		Search:      c.Query("search"),
		Insurer:     c.Query("insurer"),
		FlaggedOnly: c.Query("flagged") == "true",
		Page:        parseQueryInt(c, "page", 1),
		PageSize:    parseQueryInt(c, "page_size", 0),
	}

	if raw := c.Query("status"); raw != "" {
		status := claim.Status(raw)
		q.Status = &status
	}

	if raw := c.Query("date_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date_from: must be YYYY-MM-DD")
			return
		}
		q.DateFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date_to: must be YYYY-MM-DD")
			return
		}
		q.DateTo = &t
	}

	if raw := c.Query("min_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid min_amount: must be a number")
			return
		}
		q.MinAmount = &d
	}
	if raw := c.Query("max_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid max_amount: must be a number")
			return
		}
		q.MaxAmount = &d
	}

	page, err := h.claimSvc.ListClaims(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}

// Search backs the typeahead box with a small result set.
//
//	GET /api/v1/claims/search?q=
func (h *ClaimHandler) Search(c *gin.Context) {
	results, err := h.claimSvc.SearchClaims(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, results)
}

// Insurers lists the distinct insurer names for the filter dropdown.
func (h *ClaimHandler) Insurers(c *gin.Context) {
	insurers, err := h.claimSvc.Insurers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, insurers)
}

// Get returns one claim with its detail, annotations and computed fields.
// The path parameter is the external claim id, not the row UUID.
func (h *ClaimHandler) Get(c *gin.Context) {
	view, err := h.claimSvc.GetClaim(c.Request.Context(), c.Param("claim_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, view)
}
