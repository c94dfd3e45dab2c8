package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"cognipdf/internal/models/request_models"
)

// TokenStream is an opaque producer of response tokens. Recv returns io.EOF
// when the upstream stream is exhausted.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

type ChatServiceInterface interface {
	StreamChat(ctx context.Context, request request_models.ChatRequest) (TokenStream, error)
}

const chatSystemPromptFormat = `You are an expert AI assistant specialized in analyzing and answering questions about the provided document.
Your primary and sole source of information is the text below. You must base all your answers on this text only.
Do not use any external knowledge. If the answer is not found in the text, you must state that clearly.
Here is the document you need to become an expert on:
--- DOCUMENT START ---
%s
--- DOCUMENT END ---

Now, please introduce yourself and invite the user to ask any questions about this document.`

type ChatService struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

func NewChatService(apiKey string, log *zap.Logger) (ChatServiceInterface, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	return &ChatService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
		log:    log.Named("chat.service"),
	}, nil
}

// StreamChat relays the document plus conversation history upstream. On the
// first message only the system prompt is sent, which makes the model
// introduce itself.
func (s *ChatService) StreamChat(ctx context.Context, request request_models.ChatRequest) (TokenStream, error) {
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(chatSystemPromptFormat, request.Text),
	}}
	for _, m := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		s.log.Error("chat completion stream failed", zap.Error(err))
		return nil, err
	}

	return &openaiStream{stream: stream}, nil
}

type openaiStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
