package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/smnuman/youtube-commenter/internal/api/v1"
	"github.com/smnuman/youtube-commenter/internal/domain"
	"github.com/smnuman/youtube-commenter/internal/reply"
)

// ---------------------------------------------------------------------------
// TestGenerateReply
// ---------------------------------------------------------------------------

func TestGenerateReply(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			generateFunc: func(_ context.Context, userID, commentID, tone string) (string, string, error) {
				assert.Equal(t, "UC-channel-1", userID)
				assert.Equal(t, "c-1", commentID)
				assert.Equal(t, "friendly", tone)
				return "Thanks for watching!", "gpt-4o-mini", nil
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/generate", map[string]any{
			"comment_id": "c-1",
			"tone":       "friendly",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "c-1", body["comment_id"])
		assert.Equal(t, "Thanks for watching!", body["reply_text"])
		assert.Equal(t, "gpt-4o-mini", body["model"])
	})

	t.Run("invalid_tone_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			generateFunc: func(_ context.Context, _, _, _ string) (string, string, error) {
				t.Fatal("generator must not run for an invalid tone")
				return "", "", nil
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/generate", map[string]any{
			"comment_id": "c-1",
			"tone":       "sarcastic",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("comment_not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			generateFunc: func(_ context.Context, _, _, _ string) (string, string, error) {
				return "", "", domain.ErrNotFound
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/generate", map[string]any{
			"comment_id": "c-gone",
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("generation_failed", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			generateFunc: func(_ context.Context, _, _, _ string) (string, string, error) {
				return "", "", domain.ErrGenerationFailed
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/generate", map[string]any{
			"comment_id": "c-1",
		})

		assert.Equal(t, http.StatusBadGateway, resp.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["detail"], "write the reply manually")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterReplyRoutes(api, &mockOrchestrator{})

		resp := api.PostCtx(context.Background(), "/reply/generate", map[string]any{
			"comment_id": "c-1",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestPostReply
// ---------------------------------------------------------------------------

func TestPostReply(t *testing.T) {
	t.Parallel()

	posted := &domain.Reply{
		ID:              "r-new",
		ParentCommentID: "c-1",
		Author:          "Creator",
		Text:            "Appreciate it!",
		PublishedAt:     time.Now().Truncate(time.Second),
		AIGenerated:     true,
		AIModel:         "gpt-4o-mini",
	}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			postFunc: func(_ context.Context, accessToken, userID, commentID, text string, aiGenerated bool, aiModel string) (*domain.Reply, error) {
				assert.Equal(t, "ya29.access", accessToken)
				assert.Equal(t, "UC-channel-1", userID)
				assert.Equal(t, "c-1", commentID)
				assert.Equal(t, "Appreciate it!", text)
				assert.True(t, aiGenerated)
				assert.Equal(t, "gpt-4o-mini", aiModel)
				return posted, nil
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/post", map[string]any{
			"comment_id":   "c-1",
			"reply_text":   "Appreciate it!",
			"ai_generated": true,
			"ai_model":     "gpt-4o-mini",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Reply *domain.Reply `json:"reply"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Reply)
		assert.Equal(t, "r-new", body.Reply.ID)
		assert.Equal(t, "c-1", body.Reply.ParentCommentID)
		assert.True(t, body.Reply.AIGenerated)
	})

	t.Run("empty_text_rejected", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			postFunc: func(_ context.Context, _, _, _, _ string, _ bool, _ string) (*domain.Reply, error) {
				t.Fatal("post must not run with empty text")
				return nil, nil
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/post", map[string]any{
			"comment_id": "c-1",
			"reply_text": "",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("comment_conflict", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			postFunc: func(_ context.Context, _, _, _, _ string, _ bool, _ string) (*domain.Reply, error) {
				return nil, domain.ErrConflict
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/post", map[string]any{
			"comment_id": "c-deleted",
			"reply_text": "Too late",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("platform_rejects_content", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			postFunc: func(_ context.Context, _, _, _, _ string, _ bool, _ string) (*domain.Reply, error) {
				return nil, domain.ErrInvalidContent
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/post", map[string]any{
			"comment_id": "c-1",
			"reply_text": "rejected text",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("posted_but_not_stored_reports_success", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)

		orch := &mockOrchestrator{
			postFunc: func(_ context.Context, _, _, _, _ string, _ bool, _ string) (*domain.Reply, error) {
				return nil, &reply.StoreAfterPostError{Reply: posted, Err: assert.AnError}
			},
		}
		v1.RegisterReplyRoutes(api, orch)

		resp := api.PostCtx(authedCtx("UC-channel-1", "ya29.access"), "/reply/post", map[string]any{
			"comment_id": "c-1",
			"reply_text": "Appreciate it!",
		})

		// The platform accepted the reply, the client must not resubmit.
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Reply *domain.Reply `json:"reply"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Reply)
		assert.Equal(t, "r-new", body.Reply.ID)
	})
}
