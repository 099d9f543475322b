package platform

import "time"

// Wire types for the YouTube Data API v3. Only the fields this service
// reads are declared; everything else in the payload is ignored.

type commentThreadListResponse struct {
	Items         []commentThread `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

type commentThread struct {
	ID      string               `json:"id"`
	Snippet commentThreadSnippet `json:"snippet"`
}

type commentThreadSnippet struct {
	TotalReplyCount int             `json:"totalReplyCount"`
	TopLevelComment commentResource `json:"topLevelComment"`
}

type commentListResponse struct {
	Items         []commentResource `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type commentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type commentSnippet struct {
	VideoID           string          `json:"videoId"`
	ParentID          string          `json:"parentId"`
	AuthorDisplayName string          `json:"authorDisplayName"`
	AuthorChannelID   authorChannelID `json:"authorChannelId"`
	TextDisplay       string          `json:"textDisplay"`
	TextOriginal      string          `json:"textOriginal"`
	LikeCount         int             `json:"likeCount"`
	PublishedAt       time.Time       `json:"publishedAt"`
}

type authorChannelID struct {
	Value string `json:"value"`
}

type searchListResponse struct {
	Items         []searchResult `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

type searchResult struct {
	ID      searchResultID `json:"id"`
	Snippet videoSnippet   `json:"snippet"`
}

type searchResultID struct {
	VideoID string `json:"videoId"`
}

type videoSnippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt time.Time  `json:"publishedAt"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type thumbnails struct {
	Default thumbnail `json:"default"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// insertCommentRequest is the body for comments.insert.
type insertCommentRequest struct {
	Snippet insertCommentSnippet `json:"snippet"`
}

type insertCommentSnippet struct {
	ParentID     string `json:"parentId"`
	TextOriginal string `json:"textOriginal"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Errors  []apiErrorItem `json:"errors"`
}

type apiErrorItem struct {
	Reason string `json:"reason"`
}
