package chat_fx

import (
	"context"
	"log"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"cognipdf/internal/api/controllers"
	"cognipdf/internal/services"
)

var Module = fx.Provide(
	provideChatService, provideChatController,
	provideSummaryService, provideSummaryController,
)

func provideChatService(logger *zap.Logger) services.ChatServiceInterface {
	chatService, err := services.NewChatService(os.Getenv("OPENAI_API_KEY"), logger)
	if err != nil {
		log.Fatalf("Error initializing chat service: %v", err)
	}
	return chatService
}

func provideChatController(chatService services.ChatServiceInterface, logger *zap.Logger) *controllers.ChatController {
	return controllers.NewChatController(chatService, logger)
}

func provideSummaryService(logger *zap.Logger) services.SummaryServiceInterface {
	summaryService, err := services.NewSummaryService(
		context.Background(),
		os.Getenv("GEMINI_API_KEY"),
		os.Getenv("GEMINI_MODEL"),
		logger,
	)
	if err != nil {
		log.Fatalf("Error initializing summary service: %v", err)
	}
	return summaryService
}

func provideSummaryController(summaryService services.SummaryServiceInterface, logger *zap.Logger) *controllers.SummaryController {
	return controllers.NewSummaryController(summaryService, logger)
}
