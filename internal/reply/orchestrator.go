package reply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/smnuman/youtube-commenter/internal/brain"
	"github.com/smnuman/youtube-commenter/internal/domain"
)

// Poster is the slice of the platform client the posting path needs.
type Poster interface {
	PostReply(ctx context.Context, accessToken, commentID, text string) (*domain.Reply, error)
}

// StoreAfterPostError reports that the platform accepted the reply but the
// local store failed to record it. The caller must treat the real-world
// action as done: retrying the post would duplicate the comment upstream.
type StoreAfterPostError struct {
	Reply *domain.Reply
	Err   error
}

func (e *StoreAfterPostError) Error() string {
	return fmt.Sprintf("reply posted to platform but not stored: %v", e.Err)
}

func (e *StoreAfterPostError) Unwrap() error { return e.Err }

// Orchestrator coordinates reply generation and posting. Generation never
// writes comment state; posting is at-most-once with no partial state on
// platform failure.
type Orchestrator struct {
	generator    brain.Generator
	poster       Poster
	comments     domain.CommentRepository
	videos       domain.VideoRepository
	interactions domain.InteractionRepository
}

func NewOrchestrator(generator brain.Generator, poster Poster, comments domain.CommentRepository, videos domain.VideoRepository, interactions domain.InteractionRepository) *Orchestrator {
	return &Orchestrator{
		generator:    generator,
		poster:       poster,
		comments:     comments,
		videos:       videos,
		interactions: interactions,
	}
}

// Generate produces reply text for a comment via the generation
// collaborator. The comment store is not mutated; only a generate
// interaction is recorded. Collaborator failures surface as
// domain.ErrGenerationFailed and do not block subsequent manual replies.
func (o *Orchestrator) Generate(ctx context.Context, userID, commentID, tone string) (text, model string, err error) {
	comment, err := o.comments.GetByID(ctx, commentID)
	if err != nil {
		return "", "", fmt.Errorf("reply.Generate: %w", err)
	}

	videoTitle := ""
	if video, verr := o.videos.GetByID(ctx, comment.VideoID); verr == nil {
		videoTitle = video.Title
	}

	var prior []string
	if replies, rerr := o.comments.ListReplies(ctx, commentID); rerr == nil {
		for _, rep := range replies {
			prior = append(prior, rep.Author+": "+rep.Text)
		}
	}

	text, model, err = o.generator.GenerateReply(ctx, &brain.Request{
		CommentAuthor: comment.Author,
		CommentText:   comment.Text,
		VideoTitle:    videoTitle,
		Tone:          tone,
		PriorReplies:  prior,
	})
	if err != nil {
		return "", "", fmt.Errorf("reply.Generate: %w", err)
	}

	o.recordInteraction(ctx, &domain.InteractionRecord{
		ID:        uuid.New(),
		UserID:    userID,
		VideoID:   comment.VideoID,
		CommentID: commentID,
		Type:      domain.InteractionGenerate,
		Timestamp: time.Now(),
		Data:      map[string]string{"reply_text": text, "model": model, "tone": tone},
	})

	return text, model, nil
}

// Post publishes a reply through the platform and, on confirmation, merges
// it into the store and records a post interaction.
//
// At-most-once: the platform call is never retried, and a platform failure
// returns the error untouched with zero store mutation. A store failure
// after platform confirmation is reported as *StoreAfterPostError so the
// caller knows the reply exists upstream.
func (o *Orchestrator) Post(ctx context.Context, accessToken, userID, commentID, text string, aiGenerated bool, aiModel string) (*domain.Reply, error) {
	comment, err := o.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("reply.Post: %w", err)
	}

	posted, err := o.poster.PostReply(ctx, accessToken, commentID, text)
	if err != nil {
		return nil, fmt.Errorf("reply.Post: %w", err)
	}

	posted.AIGenerated = aiGenerated
	posted.AIModel = aiModel

	if err := o.comments.AppendReply(ctx, posted); err != nil {
		return posted, &StoreAfterPostError{Reply: posted, Err: err}
	}

	o.recordInteraction(ctx, &domain.InteractionRecord{
		ID:        uuid.New(),
		UserID:    userID,
		VideoID:   comment.VideoID,
		CommentID: commentID,
		ReplyID:   posted.ID,
		Type:      domain.InteractionPost,
		Timestamp: time.Now(),
		Data:      postData(text, aiGenerated, aiModel),
	})

	return posted, nil
}

func postData(text string, aiGenerated bool, aiModel string) map[string]string {
	data := map[string]string{"reply_text": text}
	if aiGenerated {
		data["ai_generated"] = "true"
		if aiModel != "" {
			data["ai_model"] = aiModel
		}
	}
	return data
}

// recordInteraction appends an audit record. A failure here is reported
// but never rolls back the platform or store mutation that preceded it.
func (o *Orchestrator) recordInteraction(ctx context.Context, rec *domain.InteractionRecord) {
	if err := o.interactions.Append(ctx, rec); err != nil {
		log.Warn().Err(err).Str("comment_id", rec.CommentID).Str("type", string(rec.Type)).
			Msg("reply: failed to record interaction")
	}
}
