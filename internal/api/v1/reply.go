package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/reply"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
)

type GenerateReplyInput struct {
	Body struct {
		CommentID string `json:"comment_id" minLength:"1" maxLength:"64" doc:"Parent comment ID"`
		Tone      string `json:"tone,omitempty" maxLength:"32" enum:",professional,friendly,enthusiastic,helpful" doc:"Reply tone"`
	}
}

type GenerateReplyOutput struct {
	Body struct {
		CommentID string `json:"comment_id"`
		ReplyText string `json:"reply_text"`
		Model     string `json:"model"`
	}
}

type PostReplyInput struct {
	Body struct {
		CommentID   string `json:"comment_id" minLength:"1" maxLength:"64" doc:"Parent comment ID"`
		ReplyText   string `json:"reply_text" minLength:"1" maxLength:"10000" doc:"Reply text to publish"`
		AIGenerated bool   `json:"ai_generated,omitempty" doc:"Whether the text came from the generator"`
		AIModel     string `json:"ai_model,omitempty" maxLength:"64" doc:"Model that generated the text"`
	}
}

type PostReplyOutput struct {
	Body struct {
		Reply *domain.Reply `json:"reply"`
	}
}

// RegisterReplyRoutes registers reply generation and posting. Generation is
// read-only with respect to comment state; posting is at-most-once and is
// never retried on failure.
func RegisterReplyRoutes(api huma.API, orchestrator ReplyOrchestrator) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-reply",
		Method:      http.MethodPost,
		Path:        "/reply/generate",
		Summary:     "Generate a suggested reply for a comment",
		Tags:        []string{"Replies"},
	}, func(ctx context.Context, input *GenerateReplyInput) (*GenerateReplyOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not authenticated")
		}

		text, model, err := orchestrator.Generate(ctx, userID, input.Body.CommentID, input.Body.Tone)
		if err != nil {
			return nil, mapServiceError(err, "reply generation failed")
		}

		out := &GenerateReplyOutput{}
		out.Body.CommentID = input.Body.CommentID
		out.Body.ReplyText = text
		out.Body.Model = model
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "post-reply",
		Method:      http.MethodPost,
		Path:        "/reply/post",
		Summary:     "Post a reply to a comment",
		Tags:        []string{"Replies"},
	}, func(ctx context.Context, input *PostReplyInput) (*PostReplyOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not authenticated")
		}
		accessToken, _ := middleware.AccessTokenFromContext(ctx)

		posted, err := orchestrator.Post(ctx, accessToken, userID, input.Body.CommentID, input.Body.ReplyText, input.Body.AIGenerated, input.Body.AIModel)
		if err != nil {
			var storeErr *reply.StoreAfterPostError
			if errors.As(err, &storeErr) {
				// The platform accepted the reply; only the local copy is
				// missing. Report success so the client does not resubmit,
				// the next sync restores the stored copy.
				log.Error().Err(storeErr.Err).Str("reply_id", storeErr.Reply.ID).
					Msg("reply: posted but not stored")

				out := &PostReplyOutput{}
				out.Body.Reply = storeErr.Reply
				return out, nil
			}
			return nil, mapServiceError(err, "failed to post reply")
		}

		out := &PostReplyOutput{}
		out.Body.Reply = posted
		return out, nil
	})
}
