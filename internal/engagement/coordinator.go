package engagement

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sikdanlog/sikdan-go/internal/cache"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/sikdanlog/sikdan-go/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/sikdanlog/sikdan-go/internal/engagement"

type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Tokens interface {
	ActorHash() (string, error)
}

// Coordinator applies like toggles optimistically and keeps comment lists
// strongly consistent by invalidate-and-refetch. Mutations never retry;
// a failed mutation rolls back and surfaces once.
type Coordinator struct {
	Transport Transport
	Cache     *cache.Store
	Tokens    Tokens
	Log       *zap.Logger
	Tracer    trace.Tracer

	mu        sync.Mutex
	postLocks map[string]*sync.Mutex
}

func NewCoordinator(transport Transport, store *cache.Store, tokens Tokens, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		Transport: transport,
		Cache:     store,
		Tokens:    tokens,
		Log:       log,
		Tracer:    otel.Tracer(tracerName),
		postLocks: make(map[string]*sync.Mutex),
	}
}

// postLock serializes mutations per post so each resolution applies against
// the then-current displayed state. Different posts never contend.
func (c *Coordinator) postLock(postHash string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.postLocks[postHash]
	if !ok {
		lock = &sync.Mutex{}
		c.postLocks[postHash] = lock
	}
	return lock
}

// Engagement returns the currently displayed like state for a post, zero
// value when nothing has been read yet.
func (c *Coordinator) Engagement(postHash string) model.Engagement {
	if val, ok := c.Cache.Get(cache.EngagementKey(postHash)); ok {
		if engagement, ok := val.(model.Engagement); ok {
			return engagement
		}
	}
	return model.Engagement{}
}

// SeedEngagement installs server-provided counters after a feed read so the
// toggle path has a baseline to flip against.
func (c *Coordinator) SeedEngagement(postHash string, engagement model.Engagement) {
	c.Cache.Set(cache.EngagementKey(postHash), engagement, constant.CACHE_ENGAGEMENT_TTL)
}

// ToggleLike flips the like state of a post. The flip is applied locally
// before the request goes out; the server response is authoritative on
// success and the flip is reverted exactly on failure.
func (c *Coordinator) ToggleLike(ctx context.Context, postHash string) (model.Engagement, error) {
	ctx, span := c.Tracer.Start(ctx, "engagement.ToggleLike")
	defer span.End()

	if _, err := c.Tokens.ActorHash(); err != nil {
		return model.Engagement{}, err
	}

	lock := c.postLock(postHash)
	lock.Lock()
	defer lock.Unlock()

	log := observability.WithContext(ctx, c.Log)
	mutation := NewMutation("toggle-like")
	key := cache.EngagementKey(postHash)

	previous := c.Engagement(postHash)
	speculative := previous
	if previous.Liked {
		speculative.Liked = false
		speculative.LikeCount = previous.LikeCount - 1
		if speculative.LikeCount < 0 {
			speculative.LikeCount = 0
		}
	} else {
		speculative.Liked = true
		speculative.LikeCount = previous.LikeCount + 1
	}

	mutation.Begin()
	c.Cache.Set(key, speculative, constant.CACHE_ENGAGEMENT_TTL)

	var authoritative model.Engagement
	err := c.Transport.Post(ctx, fmt.Sprintf("/posts/%s/like-toggle", postHash), nil, &authoritative)
	if err != nil {
		mutation.Rollback()
		c.Cache.Set(key, previous, constant.CACHE_ENGAGEMENT_TTL)
		log.Debug("like toggle rolled back",
			zap.String("postHash", postHash),
			zap.Error(err),
		)
		return previous, err
	}

	mutation.Commit()
	if authoritative != speculative {
		// Raced with another toggle; the server wins, silently.
		log.Debug("correcting speculative like state",
			zap.String("postHash", postHash),
			zap.Bool("speculativeLiked", speculative.Liked),
			zap.Bool("authoritativeLiked", authoritative.Liked),
		)
	}
	c.Cache.Set(key, authoritative, constant.CACHE_ENGAGEMENT_TTL)

	return authoritative, nil
}

// CreateComment submits a comment and refetches the post's flat list. A
// refetch failure after the server accepted the write still counts as a
// successful create: the list cache is dropped, a nil list comes back, and
// the caller retries the read only. The body is never resubmitted.
func (c *Coordinator) CreateComment(ctx context.Context, postHash string, body string, parentHash *string) ([]model.Comment, error) {
	ctx, span := c.Tracer.Start(ctx, "engagement.CreateComment")
	defer span.End()

	if _, err := c.Tokens.ActorHash(); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Comment body is required",
			Param:   "body",
		}
	}

	request := model.CreateCommentRequest{
		Body:       body,
		ParentHash: parentHash,
	}
	err := c.Transport.Post(ctx, fmt.Sprintf("/posts/%s/comments", postHash), request, nil)
	if err != nil {
		return nil, err
	}

	return c.reloadComments(ctx, postHash, "comment created but thread refresh failed"), nil
}

// DeleteComment soft-deletes a comment and refetches the list so the
// placeholder and retained position come from the server, never synthesized
// locally. Deleting an already-deleted comment is harmless: the refetch
// rebuilds the thread from whatever the server holds now.
func (c *Coordinator) DeleteComment(ctx context.Context, postHash string, commentHash string) ([]model.Comment, error) {
	ctx, span := c.Tracer.Start(ctx, "engagement.DeleteComment")
	defer span.End()

	if _, err := c.Tokens.ActorHash(); err != nil {
		return nil, err
	}

	err := c.Transport.Delete(ctx, fmt.Sprintf("/comments/%s", commentHash), nil)
	if err != nil {
		return nil, err
	}

	return c.reloadComments(ctx, postHash, "comment deleted but thread refresh failed"), nil
}

// ListComments returns the post's flat comment list, served from cache when
// fresh.
func (c *Coordinator) ListComments(ctx context.Context, postHash string) ([]model.Comment, error) {
	ctx, span := c.Tracer.Start(ctx, "engagement.ListComments")
	defer span.End()

	if val, ok := c.Cache.Get(cache.CommentsKey(postHash)); ok {
		if comments, ok := val.([]model.Comment); ok {
			return comments, nil
		}
	}

	return c.fetchComments(ctx, postHash)
}

// reloadComments is the post-mutation refetch. The mutation has already
// succeeded by the time it runs, so its own failure only drops the cache
// entry and returns nil; the caller re-reads via ListComments.
func (c *Coordinator) reloadComments(ctx context.Context, postHash string, warning string) []model.Comment {
	c.Cache.Invalidate(cache.CommentsKey(postHash))

	comments, err := c.fetchComments(ctx, postHash)
	if err != nil {
		observability.WithContext(ctx, c.Log).Warn(warning,
			zap.String("postHash", postHash),
			zap.Error(err),
		)
		return nil
	}
	return comments
}

func (c *Coordinator) fetchComments(ctx context.Context, postHash string) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.Transport.Get(ctx, fmt.Sprintf("/posts/%s/comments", postHash), &comments)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	c.Cache.Set(cache.CommentsKey(postHash), comments, constant.CACHE_COMMENTS_TTL)
	return comments, nil
}
