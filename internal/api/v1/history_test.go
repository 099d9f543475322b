package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/smnuman/youtube-commenter/internal/api/v1"
	"github.com/smnuman/youtube-commenter/internal/domain"
)

func TestListHistory(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)
	sample := []*domain.InteractionRecord{
		{
			ID: uuid.New(), UserID: "UC-channel-1", VideoID: "vid-1",
			Type: domain.InteractionPost, CommentID: "c-1", ReplyID: "r-1",
			Timestamp: now,
		},
		{
			ID: uuid.New(), UserID: "UC-channel-1", VideoID: "vid-1",
			Type: domain.InteractionFetch, Timestamp: now.Add(-time.Minute),
			Data: map[string]string{"comment_count": "8"},
		},
	}

	t.Run("happy_path_default_limit", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		store := &mockDataStore{
			interactions: &mockInteractionRepo{
				listByUserFunc: func(_ context.Context, userID string, limit int) ([]*domain.InteractionRecord, error) {
					assert.Equal(t, "UC-channel-1", userID)
					assert.Equal(t, 50, limit)
					return sample, nil
				},
			},
		}
		v1.RegisterHistoryRoutes(api, store)

		resp := api.GetCtx(authedCtx("UC-channel-1", "ya29.access"), "/history")

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Interactions []*domain.InteractionRecord `json:"interactions"`
			Count        int                         `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Interactions, 2)
		assert.Equal(t, domain.InteractionPost, body.Interactions[0].Type)
		assert.Equal(t, "r-1", body.Interactions[0].ReplyID)
		assert.Equal(t, "8", body.Interactions[1].Data["comment_count"])
	})

	t.Run("explicit_limit", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		store := &mockDataStore{
			interactions: &mockInteractionRepo{
				listByUserFunc: func(_ context.Context, _ string, limit int) ([]*domain.InteractionRecord, error) {
					assert.Equal(t, 5, limit)
					return sample[:1], nil
				},
			},
		}
		v1.RegisterHistoryRoutes(api, store)

		resp := api.GetCtx(authedCtx("UC-channel-1", "ya29.access"), "/history?limit=5")

		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("limit_out_of_bounds", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHistoryRoutes(api, &mockDataStore{})

		resp := api.GetCtx(authedCtx("UC-channel-1", "ya29.access"), "/history?limit=9999")

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterHistoryRoutes(api, &mockDataStore{})

		resp := api.GetCtx(context.Background(), "/history")

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("store_error", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		store := &mockDataStore{
			interactions: &mockInteractionRepo{
				listByUserFunc: func(_ context.Context, _ string, _ int) ([]*domain.InteractionRecord, error) {
					return nil, errors.New("db connection refused")
				},
			},
		}
		v1.RegisterHistoryRoutes(api, store)

		resp := api.GetCtx(authedCtx("UC-channel-1", "ya29.access"), "/history")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
