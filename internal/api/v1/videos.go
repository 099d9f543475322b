package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/server/middleware"
)

type ListVideosOutput struct {
	Body struct {
		Videos []*domain.Video `json:"videos"`
		Count  int             `json:"count"`
	}
}

// RegisterVideoRoutes registers the channel video listing. The list always
// reflects the platform: each call re-fetches the channel uploads and
// refreshes the stored copies.
func RegisterVideoRoutes(api huma.API, store DataStore, videos VideoLister) {
	huma.Register(api, huma.Operation{
		OperationID: "list-videos",
		Method:      http.MethodGet,
		Path:        "/videos",
		Summary:     "List the authenticated channel's videos",
		Tags:        []string{"Videos"},
	}, func(ctx context.Context, _ *struct{}) (*ListVideosOutput, error) {
		accessToken, ok := middleware.AccessTokenFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("not authenticated")
		}

		all := []*domain.Video{}
		pageToken := ""
		for {
			page, next, err := videos.ListChannelVideos(ctx, accessToken, pageToken)
			if err != nil {
				return nil, mapServiceError(err, "failed to list channel videos")
			}
			all = append(all, page...)
			if next == "" {
				break
			}
			pageToken = next
		}

		for _, video := range all {
			if err := store.Videos().Upsert(ctx, video); err != nil {
				log.Warn().Err(err).Str("video_id", video.ID).Msg("videos: failed to store video")
			}
		}

		out := &ListVideosOutput{}
		out.Body.Videos = all
		out.Body.Count = len(all)
		return out, nil
	})
}
