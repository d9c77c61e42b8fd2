package handler

import (
	ledgerapp "github.com/academia/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// MigrationHandler handles the legacy-deposit migration endpoints
type MigrationHandler struct {
	BaseHandler
	service *ledgerapp.MigrationService
}

// NewMigrationHandler creates a new MigrationHandler
func NewMigrationHandler(service *ledgerapp.MigrationService) *MigrationHandler {
	return &MigrationHandler{service: service}
}

// Preview handles GET /migration/preview
func (h *MigrationHandler) Preview(c *gin.Context) {
	preview, err := h.service.Preview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Run handles POST /migration/run. The batch is all-or-nothing; concurrent
// runs are not guarded here, the operator runs one at a time.
func (h *MigrationHandler) Run(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		h.Unauthorized(c, "Staff identity required")
		return
	}

	report, err := h.service.Run(c.Request.Context(), staffID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RegisterRoutes registers all migration routes
func (h *MigrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	migration := rg.Group("/migration")
	{
		migration.GET("/preview", h.Preview)
		migration.POST("/run", h.Run)
	}
}
