package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type SummaryServiceInterface interface {
	StreamSummary(ctx context.Context, text, language string) (TokenStream, error)
}

// SummaryService runs summaries on Gemini's flash tier; chat stays on
// OpenAI.
type SummaryService struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewSummaryService(ctx context.Context, apiKey, model string, log *zap.Logger) (SummaryServiceInterface, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &SummaryService{
		client: client,
		model:  model,
		log:    log.Named("summary.service"),
	}, nil
}

func (s *SummaryService) StreamSummary(ctx context.Context, text, language string) (TokenStream, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text provided for summarization")
	}
	if language == "" {
		language = "English"
	}

	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.5)

	prompt := fmt.Sprintf(`You are a highly skilled AI assistant trained to summarize documents. Your task is to provide a concise, clear, and accurate summary of the provided text. You MUST write the summary in the following language: %s. Focus on the key points, main arguments, and important conclusions.

Please summarize the following document text:

---

%s`, language, text)

	iter := model.GenerateContentStream(ctx, genai.Text(prompt))
	return &geminiStream{iter: iter}, nil
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String(), nil
}

func (s *geminiStream) Close() error {
	return nil
}
