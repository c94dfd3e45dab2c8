package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cognipdf/internal/models/request_models"
	"cognipdf/internal/services"
	"cognipdf/pkg/utils"
)

type ChatController struct {
	chatService services.ChatServiceInterface
	log         *zap.Logger
}

func NewChatController(chatService services.ChatServiceInterface, log *zap.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		log:         log.Named("chat.controller"),
	}
}

// Generate godoc
// @Summary Stream a chat completion about a document
// @Description Relays model output as server-sent events, one content chunk per event
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param request body request_models.ChatRequest true "Document text and chat history"
// @Security BearerAuth
// @Router /chat/generate [post]
func (ch *ChatController) Generate(c *gin.Context) {
	var request request_models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	stream, err := ch.chatService.StreamChat(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	defer stream.Close()

	relayTokenStream(c, stream, ch.log)
}

// relayTokenStream writes a token stream to the client as SSE. The contract
// is one `data: {"content": ...}` event per chunk and a final `data: [DONE]`.
// Errors mid-stream end the response; headers are already out by then.
func relayTokenStream(c *gin.Context, stream services.TokenStream, log *zap.Logger) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("token stream interrupted", zap.Error(err))
			return
		}
		if chunk == "" {
			continue
		}

		payload, err := json.Marshal(gin.H{"content": chunk})
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		flusher.Flush()
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()
}
