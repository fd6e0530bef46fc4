package feed

import (
	"context"
	"fmt"

	"github.com/sikdanlog/sikdan-go/internal/cache"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/sikdanlog/sikdan-go/internal/upload"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/sikdanlog/sikdan-go/internal/feed"

type Transport interface {
	Get(ctx context.Context, path string, out any) error
}

// Service is the read side: feed and community post listings, single-post
// reads, and the month-scoped image views that upload completions
// invalidate.
type Service struct {
	Transport Transport
	Uploads   *upload.Coordinator
	Cache     *cache.Store
	Log       *zap.Logger
	Tracer    trace.Tracer
}

func NewService(transport Transport, uploads *upload.Coordinator, store *cache.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Transport: transport,
		Uploads:   uploads,
		Cache:     store,
		Log:       log,
		Tracer:    otel.Tracer(tracerName),
	}
}

func (s *Service) ListFeed(ctx context.Context, limit int) ([]model.Post, error) {
	ctx, span := s.Tracer.Start(ctx, "feed.ListFeed")
	defer span.End()

	if limit <= 0 {
		limit = constant.DEFAULT_LIMIT
	}
	if limit > constant.MAX_LIMIT {
		return nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Limit is exceeded max limit: %d", constant.MAX_LIMIT),
			Param:   "limit",
		}
	}

	var posts []model.Post
	err := s.Transport.Get(ctx, fmt.Sprintf("/feed?limit=%d", limit), &posts)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		s.Cache.Set(cache.EngagementKey(post.ViewHash), post.Engagement, constant.CACHE_ENGAGEMENT_TTL)
	}

	return posts, nil
}

func (s *Service) GetPost(ctx context.Context, postHash string) (model.Post, error) {
	ctx, span := s.Tracer.Start(ctx, "feed.GetPost")
	defer span.End()

	var post model.Post
	err := s.Transport.Get(ctx, fmt.Sprintf("/posts/%s", postHash), &post)
	if err != nil {
		return model.Post{}, err
	}

	s.Cache.Set(cache.EngagementKey(post.ViewHash), post.Engagement, constant.CACHE_ENGAGEMENT_TTL)
	return post, nil
}

// ListMonthImages returns the month's uploaded artifacts, cache-first.
func (s *Service) ListMonthImages(ctx context.Context, monthTag string) ([]model.MonthImage, error) {
	ctx, span := s.Tracer.Start(ctx, "feed.ListMonthImages")
	defer span.End()

	key := cache.MonthImagesKey(monthTag)
	if val, ok := s.Cache.Get(key); ok {
		if images, ok := val.([]model.MonthImage); ok {
			return images, nil
		}
	}

	var images []model.MonthImage
	err := s.Transport.Get(ctx, fmt.Sprintf("/months/%s/images", monthTag), &images)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []model.MonthImage{}
	}

	s.Cache.Set(key, images, constant.CACHE_MONTH_IMAGES_TTL)
	return images, nil
}

// UploadMonthCover submits a month cover image and, on success, drops the
// month's cached image view so the next read sees the new artifact.
func (s *Service) UploadMonthCover(ctx context.Context, monthTag string, unit *upload.TransferUnit) (*model.UploadJob, error) {
	job := upload.NewJob(fmt.Sprintf("/months/%s/cover", monthTag), monthTag, unit)
	return job, s.submit(ctx, job, unit, cache.MonthImagesKey(monthTag))
}

// UploadMealPhoto submits a meal photo into the month's journal.
func (s *Service) UploadMealPhoto(ctx context.Context, monthTag string, unit *upload.TransferUnit) (*model.UploadJob, error) {
	job := upload.NewJob(fmt.Sprintf("/months/%s/meals", monthTag), monthTag, unit)
	return job, s.submit(ctx, job, unit, cache.MonthImagesKey(monthTag))
}

// UploadProfileImage submits a new profile image. No month scope and no
// cached view to drop.
func (s *Service) UploadProfileImage(ctx context.Context, unit *upload.TransferUnit) (*model.UploadJob, error) {
	job := upload.NewJob("/profile/image", "", unit)
	return job, s.submit(ctx, job, unit, "")
}

func (s *Service) submit(ctx context.Context, job *model.UploadJob, unit *upload.TransferUnit, invalidateKey string) error {
	err := s.Uploads.Submit(ctx, job, unit.Factory())
	if err != nil {
		return err
	}

	if invalidateKey != "" {
		s.Cache.Invalidate(invalidateKey)
		s.Log.Debug("dropped cached view after upload",
			zap.String("key", invalidateKey),
			zap.String("jobId", job.Id.String()),
		)
	}
	return nil
}
