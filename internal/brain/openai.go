package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// Generator produces reply text for a comment. Implementations are external
// collaborators; failures surface as domain.ErrGenerationFailed and never
// touch the comment store.
type Generator interface {
	// GenerateReply returns the reply text and the model that produced it.
	GenerateReply(ctx context.Context, req *Request) (text, model string, err error)
}

// Request carries the context the generator conditions on.
type Request struct {
	CommentAuthor string
	CommentText   string
	VideoTitle    string
	Tone          string
	// PriorReplies is the existing reply history under the comment, in
	// display order, formatted as "author: text" lines.
	PriorReplies []string
}

// OpenAIGenerator generates replies through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates a generator using the given API key and model.
func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

var _ Generator = (*OpenAIGenerator)(nil)

func (g *OpenAIGenerator) GenerateReply(ctx context.Context, req *Request) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.Tone)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("brain.GenerateReply: %w: %w", domain.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("brain.GenerateReply: empty completion: %w", domain.ErrGenerationFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Model, nil
}

func systemPrompt(tone string) string {
	base := "You are an assistant helping a YouTube content creator respond to comments on their videos. " +
		"Your goal is to write thoughtful, authentic replies that engage with the commenter and foster a positive community. " +
		"Keep replies concise, friendly, and conversational. Avoid generic responses."

	var toneInstructions string
	switch tone {
	case "professional":
		toneInstructions = "Maintain a professional and informative tone. Be helpful and knowledgeable while remaining approachable."
	case "friendly":
		toneInstructions = "Be warm, casual, and conversational. Use a friendly tone as if chatting with someone you know well."
	case "enthusiastic":
		toneInstructions = "Be energetic and excited in your response. Show enthusiasm and appreciation for the commenter."
	case "helpful":
		toneInstructions = "Focus on being as helpful as possible. Provide useful information and address any questions thoroughly."
	default:
		toneInstructions = "Use a balanced, friendly tone that's authentic and engaging."
	}

	return base + "\n\n" + toneInstructions
}

func userPrompt(req *Request) string {
	var b strings.Builder

	title := req.VideoTitle
	if title == "" {
		title = "YouTube Video"
	}
	fmt.Fprintf(&b, "Please write a reply to the following comment on my YouTube video titled %q:\n\n", title)
	fmt.Fprintf(&b, "Comment from %s: %q\n\n", req.CommentAuthor, req.CommentText)

	if len(req.PriorReplies) > 0 {
		b.WriteString("Existing replies under this comment:\n")
		for _, line := range req.PriorReplies {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	b.WriteString("Write only the reply text without any additional formatting or explanation.")

	return b.String()
}
