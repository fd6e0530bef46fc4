package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sikdanlog/sikdan-go/internal/cache"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/sikdanlog/sikdan-go/internal/upload"
	"github.com/stretchr/testify/require"
)

type fakeGetTransport struct {
	calls []string
	getFn func(path string, out any) error
}

func (f *fakeGetTransport) Get(_ context.Context, path string, out any) error {
	f.calls = append(f.calls, path)
	if f.getFn == nil {
		return nil
	}
	return f.getFn(path, out)
}

type fakeMultipartTransport struct {
	submissions int
	err         error
}

func (f *fakeMultipartTransport) SubmitMultipart(_ context.Context, _ string, _ map[string]string, _ string, _ string, _ string, payload io.Reader, _ any) error {
	_, _ = io.ReadAll(payload)
	f.submissions++
	return f.err
}

func newTestService(t *testing.T, getTransport *fakeGetTransport, multipart *fakeMultipartTransport) *Service {
	t.Helper()
	store, err := cache.NewStore(50)
	require.NoError(t, err)
	return NewService(getTransport, upload.NewCoordinator(multipart, nil), store, nil)
}

func testUnit() *upload.TransferUnit {
	return &upload.TransferUnit{Data: []byte("webp-bytes"), FileName: "cover.webp", MimeType: "image/webp", Size: 10}
}

func TestListFeedSeedsEngagement(t *testing.T) {
	transport := &fakeGetTransport{
		getFn: func(path string, out any) error {
			*(out.(*[]model.Post)) = []model.Post{
				{ViewHash: "p1", Engagement: model.Engagement{Liked: true, LikeCount: 3}},
				{ViewHash: "p2", Engagement: model.Engagement{Liked: false, LikeCount: 0}},
			}
			return nil
		},
	}
	s := newTestService(t, transport, &fakeMultipartTransport{})

	posts, err := s.ListFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, []string{"/feed?limit=20"}, transport.calls)

	val, ok := s.Cache.Get(cache.EngagementKey("p1"))
	require.True(t, ok, "engagement baseline must land in the cache for the toggle path")
	require.Equal(t, model.Engagement{Liked: true, LikeCount: 3}, val)
}

func TestListFeedRejectsExcessiveLimit(t *testing.T) {
	transport := &fakeGetTransport{}
	s := newTestService(t, transport, &fakeMultipartTransport{})

	_, err := s.ListFeed(context.Background(), 5000)
	require.Error(t, err)
	require.True(t, model.IsValidation(err))
	require.Empty(t, transport.calls)
}

func TestListMonthImagesCacheFirst(t *testing.T) {
	transport := &fakeGetTransport{
		getFn: func(path string, out any) error {
			*(out.(*[]model.MonthImage)) = []model.MonthImage{
				{MonthTag: "2026-08", Kind: "cover", Path: "/img/cover.webp", UpdatedAt: time.Now().UTC()},
			}
			return nil
		},
	}
	s := newTestService(t, transport, &fakeMultipartTransport{})

	images, err := s.ListMonthImages(context.Background(), "2026-08")
	require.NoError(t, err)
	require.Len(t, images, 1)

	_, err = s.ListMonthImages(context.Background(), "2026-08")
	require.NoError(t, err)
	require.Len(t, transport.calls, 1, "second read must come from the cache")
}

func TestUploadMonthCoverInvalidatesMonthView(t *testing.T) {
	s := newTestService(t, &fakeGetTransport{}, &fakeMultipartTransport{})
	s.Cache.Set(cache.MonthImagesKey("2026-08"), []model.MonthImage{{Path: "/img/old.webp"}}, time.Minute)

	job, err := s.UploadMonthCover(context.Background(), "2026-08", testUnit())
	require.NoError(t, err)
	require.Equal(t, model.UploadSucceeded, job.Status)
	require.Equal(t, "/months/2026-08/cover", job.Endpoint)

	_, ok := s.Cache.Get(cache.MonthImagesKey("2026-08"))
	require.False(t, ok, "stale month view must be dropped after a successful upload")
}

func TestFailedUploadKeepsPriorView(t *testing.T) {
	multipart := &fakeMultipartTransport{err: model.NewServerRejectedError("image too large")}
	s := newTestService(t, &fakeGetTransport{}, multipart)

	prior := []model.MonthImage{{Path: "/img/old.webp"}}
	s.Cache.Set(cache.MonthImagesKey("2026-08"), prior, time.Minute)

	job, err := s.UploadMealPhoto(context.Background(), "2026-08", testUnit())
	require.Error(t, err)
	require.Equal(t, model.UploadFailed, job.Status)
	require.Equal(t, 1, multipart.submissions)

	val, ok := s.Cache.Get(cache.MonthImagesKey("2026-08"))
	require.True(t, ok, "the prior artifact stays in place after a failed upload")
	require.Equal(t, prior, val)
}

func TestUploadProfileImageHasNoMonthScope(t *testing.T) {
	s := newTestService(t, &fakeGetTransport{}, &fakeMultipartTransport{})

	job, err := s.UploadProfileImage(context.Background(), testUnit())
	require.NoError(t, err)
	require.Equal(t, "/profile/image", job.Endpoint)
	require.Empty(t, job.MonthTag)
}
