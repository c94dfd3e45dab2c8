package request_models

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatRequest struct {
	// Extracted document text; the relay never parses PDFs itself.
	Text     string        `json:"text" binding:"required"`
	Messages []ChatMessage `json:"messages"`
}

type SummaryRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}
