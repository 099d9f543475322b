package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
)

type GetCommentsInput struct {
	VideoID string `path:"videoId" minLength:"1" maxLength:"64" doc:"Platform video ID"`
}

type GetCommentsOutput struct {
	Body struct {
		VideoID  string            `json:"video_id"`
		Comments []*domain.Comment `json:"comments"`
		Count    int               `json:"count"`
	}
}

// RegisterCommentRoutes registers the comment fetch endpoint. A GET first
// synchronizes the stored copy against the platform, then returns the
// merged result newest-first with replies nested in platform order.
func RegisterCommentRoutes(api huma.API, syncer CommentSyncer) {
	huma.Register(api, huma.Operation{
		OperationID: "get-comments",
		Method:      http.MethodGet,
		Path:        "/comments/{videoId}",
		Summary:     "Fetch and return comments for a video",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *GetCommentsInput) (*GetCommentsOutput, error) {
		accessToken, ok := middleware.AccessTokenFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not authenticated")
		}
		userID, _ := middleware.UserIDFromContext(ctx)

		if err := syncer.Sync(ctx, accessToken, userID, input.VideoID); err != nil {
			return nil, mapServiceError(err, "comment synchronization failed")
		}

		comments, err := syncer.Get(ctx, input.VideoID)
		if err != nil {
			return nil, mapServiceError(err, "failed to load comments")
		}

		out := &GetCommentsOutput{}
		out.Body.VideoID = input.VideoID
		out.Body.Comments = comments
		out.Body.Count = len(comments)
		return out, nil
	})
}
