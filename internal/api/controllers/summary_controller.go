package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognipdf/internal/models/request_models"
	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type SummaryController struct {
	summaryService services.SummaryServiceInterface
	log            *zap.Logger
}

func NewSummaryController(summaryService services.SummaryServiceInterface, log *zap.Logger) *SummaryController {
	return &SummaryController{
		summaryService: summaryService,
		log:            log.Named("summary.controller"),
	}
}

// Generate godoc
// @Summary Stream a document summary
// @Tags Summary
// @Accept json
// @Produce text/event-stream
// @Param request body request_models.SummaryRequest true "Document text and target language"
// @Security BearerAuth
// @Router /summary/generate [post]
func (s *SummaryController) Generate(c *gin.Context) {
	var request request_models.SummaryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	stream, err := s.summaryService.StreamSummary(c.Request.Context(), request.Text, request.Language)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer stream.Close()

	relayTokenStream(c, stream, s.log)
}
