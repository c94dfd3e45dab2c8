package controllers

import (
	"github.com/gin-gonic/gin"

	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type PlanController struct {
	planService services.PlanServiceInterface
}

func NewPlanController(planService services.PlanServiceInterface) *PlanController {
	return &PlanController{
		planService: planService,
	}
}

// List godoc
// @Summary List purchasable subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /plans [get]
func (p *PlanController) List(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"plans": p.planService.ListOffers()}, "")
}
