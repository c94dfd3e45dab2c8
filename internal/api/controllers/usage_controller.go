package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cognipdf/internal/models/response_models"
	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type UsageController struct {
	entitlementService services.EntitlementServiceInterface
}

func NewUsageController(entitlementService services.EntitlementServiceInterface) *UsageController {
	return &UsageController{
		entitlementService: entitlementService,
	}
}

// Status godoc
// @Summary Current usage counters and plan limits
// @Description Counters for the active rolling window alongside the plan's limits
// @Tags Limits
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /limits/status [get]
func (u *UsageController) Status(c *gin.Context) {
	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	resp, err := u.entitlementService.Status(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "")
}

// IncrementUpload godoc
// @Summary Record a document upload
// @Description Increments the upload counter if the plan allows it; resets the chat counter
// @Tags Limits
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /limits/increment-upload [post]
func (u *UsageController) IncrementUpload(c *gin.Context) {
	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	ledger, err := u.entitlementService.RecordUpload(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.IncrementUploadResponse{
		UploadCount:       ledger.UploadCount,
		ChatMessagesCount: ledger.ChatMessageCount,
	}, "Upload recorded")
}

// IncrementChat godoc
// @Summary Record a chat message against the current document
// @Tags Limits
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /limits/increment-chat [post]
func (u *UsageController) IncrementChat(c *gin.Context) {
	accountID, err := uuid.Parse(c.GetString("account_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	decision, err := u.entitlementService.CanSendChat(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	ledger, err := u.entitlementService.RecordChat(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.IncrementChatResponse{
		ChatMessagesCount: ledger.ChatMessageCount,
		ChatLimit:         decision.Limit,
	}, "Chat message recorded")
}
