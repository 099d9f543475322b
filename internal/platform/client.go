package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/domain"
)

// DefaultBaseURL is the production YouTube Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// MetaTotalReplyCount is the comment metadata key carrying the platform's
// reply count for the thread at fetch time.
const MetaTotalReplyCount = "total_reply_count"

// Client wraps outbound calls to the video platform's comment API.
// It holds no credentials; the caller passes an access token per call so
// the session gate stays the single owner of credential state.
//
// The client does not auto-paginate: callers loop until the returned page
// token is empty, which lets the comment store decide partial-sync
// checkpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	pageSize   int
}

// NewClient creates a platform client. timeout bounds each outbound call;
// maxRetries bounds the rate-limit retry loop.
func NewClient(baseURL string, timeout time.Duration, maxRetries, pageSize int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		pageSize:   pageSize,
	}
}

// ListComments returns one page of top-level comments for a video, newest
// first as the platform orders them, plus the token for the next page
// (empty when exhausted).
func (c *Client) ListComments(ctx context.Context, accessToken, videoID, pageToken string) ([]*domain.Comment, string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", videoID)
	q.Set("maxResults", strconv.Itoa(c.pageSize))
	q.Set("textFormat", "plainText")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp commentThreadListResponse
	if err := c.get(ctx, accessToken, "/commentThreads", q, &resp); err != nil {
		return nil, "", fmt.Errorf("platform.ListComments: %w", err)
	}

	comments := make([]*domain.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		sn := thread.Snippet.TopLevelComment.Snippet
		c := &domain.Comment{
			VideoID:         videoID,
			ID:              thread.ID,
			Author:          sn.AuthorDisplayName,
			AuthorChannelID: sn.AuthorChannelID.Value,
			Text:            sn.TextDisplay,
			LikeCount:       sn.LikeCount,
			PublishedAt:     sn.PublishedAt,
		}
		// The thread's reply count rides along in the open metadata so the
		// sync layer can decide which reply threads to pull.
		if thread.Snippet.TotalReplyCount > 0 {
			c.Metadata = map[string]string{
				MetaTotalReplyCount: strconv.Itoa(thread.Snippet.TotalReplyCount),
			}
		}
		comments = append(comments, c)
	}

	return comments, resp.NextPageToken, nil
}

// ListReplies returns one page of replies to a comment in platform display
// order, plus the next page token.
func (c *Client) ListReplies(ctx context.Context, accessToken, commentID, pageToken string) ([]*domain.Reply, string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("parentId", commentID)
	q.Set("maxResults", strconv.Itoa(c.pageSize))
	q.Set("textFormat", "plainText")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp commentListResponse
	if err := c.get(ctx, accessToken, "/comments", q, &resp); err != nil {
		return nil, "", fmt.Errorf("platform.ListReplies: %w", err)
	}

	replies := make([]*domain.Reply, 0, len(resp.Items))
	for _, item := range resp.Items {
		replies = append(replies, &domain.Reply{
			ID:              item.ID,
			ParentCommentID: commentID,
			Author:          item.Snippet.AuthorDisplayName,
			Text:            item.Snippet.TextDisplay,
			LikeCount:       item.Snippet.LikeCount,
			PublishedAt:     item.Snippet.PublishedAt,
		})
	}

	return replies, resp.NextPageToken, nil
}

// PostReply publishes a reply under the given comment and returns the
// platform-confirmed reply resource. Not retried on any failure: a retry
// after a slow acknowledgement could duplicate the comment upstream.
func (c *Client) PostReply(ctx context.Context, accessToken, commentID, text string) (*domain.Reply, error) {
	body, err := json.Marshal(insertCommentRequest{
		Snippet: insertCommentSnippet{ParentID: commentID, TextOriginal: text},
	})
	if err != nil {
		return nil, fmt.Errorf("platform.PostReply: marshal: %w", err)
	}

	u := c.baseURL + "/comments?part=snippet"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("platform.PostReply: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform.PostReply: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("platform.PostReply: %w", c.mapError(httpResp))
	}

	var item commentResource
	if err := json.NewDecoder(httpResp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("platform.PostReply: decode: %w", err)
	}

	return &domain.Reply{
		ID:              item.ID,
		ParentCommentID: commentID,
		Author:          item.Snippet.AuthorDisplayName,
		Text:            item.Snippet.TextOriginal,
		LikeCount:       item.Snippet.LikeCount,
		PublishedAt:     item.Snippet.PublishedAt,
	}, nil
}

// ListChannelVideos returns one page of the authenticated channel's videos,
// newest first, plus the next page token.
func (c *Client) ListChannelVideos(ctx context.Context, accessToken, pageToken string) ([]*domain.Video, string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("forMine", "true")
	q.Set("type", "video")
	q.Set("order", "date")
	q.Set("maxResults", strconv.Itoa(c.pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp searchListResponse
	if err := c.get(ctx, accessToken, "/search", q, &resp); err != nil {
		return nil, "", fmt.Errorf("platform.ListChannelVideos: %w", err)
	}

	videos := make([]*domain.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, &domain.Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			PublishedAt:  item.Snippet.PublishedAt,
			ThumbnailURL: item.Snippet.Thumbnails.Default.URL,
		})
	}

	return videos, resp.NextPageToken, nil
}

// get performs an authorized GET with a bounded retry loop. Only rate
// limiting is retried; every other failure maps straight to a domain
// sentinel and returns.
func (c *Client) get(ctx context.Context, accessToken, endpoint string, q url.Values, result any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt, lastErr)
			log.Debug().Str("endpoint", endpoint).Dur("delay", delay).Int("attempt", attempt).
				Msg("platform: rate limited, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusOK {
			err = json.NewDecoder(resp.Body).Decode(result)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			return nil
		}

		mapped := c.mapError(resp)
		resp.Body.Close()

		if !isRateLimited(mapped) {
			return mapped
		}
		lastErr = mapped
	}

	return lastErr
}

// retryAfterError carries the platform's retry-after hint through the
// backoff loop. It unwraps to domain.ErrRateLimited.
type retryAfterError struct {
	after time.Duration
	err   error
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// backoffDelay computes a jittered exponential delay, preferring the
// platform-supplied retry-after hint when present.
func backoffDelay(attempt int, lastErr error) time.Duration {
	var ra *retryAfterError
	if errors.As(lastErr, &ra) && ra.after > 0 {
		return ra.after
	}

	base := time.Duration(1<<uint(attempt)) * 500 * time.Millisecond
	jitter := time.Duration(rand.Int64N(int64(base / 2)))
	return base + jitter
}

// mapError translates a platform error payload into a domain sentinel.
func (c *Client) mapError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload apiErrorResponse
	reason := ""
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error.Errors) > 0 {
		reason = payload.Error.Errors[0].Reason
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		switch reason {
		case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return wrapRateLimited(resp)
		}
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusTooManyRequests:
		return wrapRateLimited(resp)
	case http.StatusBadRequest:
		switch reason {
		case "commentTextRequired", "commentTextTooLong", "invalidTextOriginal", "processingFailure":
			return domain.ErrInvalidContent
		case "parentCommentNotFound", "commentNotFound":
			return domain.ErrConflict
		}
		return fmt.Errorf("%s: %w", payload.Error.Message, domain.ErrInvalidContent)
	}

	return fmt.Errorf("platform returned %d: %s", resp.StatusCode, payload.Error.Message)
}

func wrapRateLimited(resp *http.Response) error {
	after := time.Duration(0)
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			after = time.Duration(secs) * time.Second
		}
	}
	return &retryAfterError{after: after, err: domain.ErrRateLimited}
}
