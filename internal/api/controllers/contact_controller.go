package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cognipdf/internal/models/request_models"
	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type ContactController struct {
	mailService services.MailServiceInterface
}

func NewContactController(mailService services.MailServiceInterface) *ContactController {
	return &ContactController{
		mailService: mailService,
	}
}

// Send godoc
// @Summary Send a contact-form message to the operators
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body request_models.ContactRequest true "Contact form payload"
// @Success 200 {object} utils.APIResponse
// @Router /contact/send [post]
func (ct *ContactController) Send(c *gin.Context) {
	var request request_models.ContactRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := ct.mailService.SendContactMessage(request.Name, request.Email, request.Message); err != nil {
		utils.HandleServiceError(c, utils.ErrEmailDelivery)
		return
	}

	utils.RespondSuccess(c, nil, "Message sent. We'll get back to you soon.")
}
