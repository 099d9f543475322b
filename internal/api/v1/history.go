package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
)

type ListHistoryInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum number of records"`
}

type ListHistoryOutput struct {
	Body struct {
		Interactions []*domain.InteractionRecord `json:"interactions"`
		Count        int                         `json:"count"`
	}
}

// RegisterHistoryRoutes registers the interaction history listing, newest
// first, scoped to the authenticated user.
func RegisterHistoryRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "List recent interactions for the current user",
		Tags:        []string{"History"},
	}, func(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not authenticated")
		}

		records, err := store.Interactions().ListByUser(ctx, userID, input.Limit)
		if err != nil {
			return nil, mapServiceError(err, "failed to load history")
		}

		out := &ListHistoryOutput{}
		out.Body.Interactions = records
		out.Body.Count = len(records)
		return out, nil
	})
}
