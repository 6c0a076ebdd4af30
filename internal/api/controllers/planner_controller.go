package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/models/request_models"
	"wayfarer/internal/models/response_models"
	"wayfarer/internal/services"
	"wayfarer/pkg/utils"
)

type PlannerController struct {
	plannerService services.PlannerServiceInterface
	exportService  services.ExportServiceInterface
}

func NewPlannerController(
	plannerService services.PlannerServiceInterface,
	exportService services.ExportServiceInterface,
) *PlannerController {
	return &PlannerController{
		plannerService: plannerService,
		exportService:  exportService,
	}
}

// CreateItineraryHandler runs the full planning pipeline for a trip
// request and returns the normalized itinerary.
func (p *PlannerController) CreateItineraryHandler(c *gin.Context) {
	var req request_models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	itinerary, err := p.plannerService.PlanTrip(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itinerary, "Itinerary created successfully")
}

// ExportItineraryHandler renders a previously produced itinerary as a PDF.
// The itinerary stays valid even when rendering fails, so callers can
// retry the export without replanning.
func (p *PlannerController) ExportItineraryHandler(c *gin.Context) {
	var itinerary response_models.Itinerary
	if err := c.ShouldBindJSON(&itinerary); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid itinerary payload")
		return
	}

	doc, err := p.exportService.Export(&itinerary)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="itinerary.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
