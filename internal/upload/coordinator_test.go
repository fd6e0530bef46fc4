package upload

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/stretchr/testify/require"
)

type submission struct {
	path     string
	fields   map[string]string
	payload  string
	mimeType string
}

type fakeUploadTransport struct {
	submissions []submission
	// results[i] is returned for attempt i+1; attempts past the end succeed.
	results []error
}

func (f *fakeUploadTransport) SubmitMultipart(_ context.Context, path string, fields map[string]string, _ string, _ string, mimeType string, payload io.Reader, _ any) error {
	// Consume the payload the way a real transport would, success or not.
	raw, _ := io.ReadAll(payload)
	f.submissions = append(f.submissions, submission{
		path:     path,
		fields:   fields,
		payload:  string(raw),
		mimeType: mimeType,
	})

	attempt := len(f.submissions)
	if attempt <= len(f.results) {
		return f.results[attempt-1]
	}
	return nil
}

// fakeTimer fires instantly and records every requested wait.
type fakeTimer struct {
	waits []time.Duration
	ch    chan time.Time
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.ch = make(chan time.Time, 1)
	t.ch <- time.Time{}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.ch
}

func transientErr() error {
	return model.NewTransientError("network down", errors.New("dial tcp: refused"))
}

func testJob() *model.UploadJob {
	return &model.UploadJob{
		Id:        uuid.New(),
		Endpoint:  "/months/2026-08/cover",
		MonthTag:  "2026-08",
		FieldName: "image",
		FileName:  "cover.webp",
		MimeType:  "image/webp",
	}
}

func payloadFactory(counter *int) PayloadFactory {
	unit := &TransferUnit{Data: []byte("webp-bytes"), FileName: "cover.webp", MimeType: "image/webp"}
	inner := unit.Factory()
	return func() (io.Reader, error) {
		*counter++
		return inner()
	}
}

func TestSubmitSucceedsFirstAttempt(t *testing.T) {
	transport := &fakeUploadTransport{}
	c := NewCoordinator(transport, nil)
	c.Timer = &fakeTimer{}

	var rebuilds int
	job := testJob()
	err := c.Submit(context.Background(), job, payloadFactory(&rebuilds))
	require.NoError(t, err)
	require.Equal(t, model.UploadSucceeded, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.Equal(t, 1, rebuilds)
	require.Len(t, transport.submissions, 1)
	require.Equal(t, "webp-bytes", transport.submissions[0].payload)
	require.Equal(t, "2026-08", transport.submissions[0].fields["monthTag"], "month scope must ride along")
}

func TestSubmitRetriesTransientAndSucceeds(t *testing.T) {
	transport := &fakeUploadTransport{results: []error{transientErr()}}
	timer := &fakeTimer{}
	var notices []string

	c := NewCoordinator(transport, nil)
	c.Timer = timer
	c.Notify = func(message string) { notices = append(notices, message) }

	var rebuilds int
	job := testJob()
	err := c.Submit(context.Background(), job, payloadFactory(&rebuilds))
	require.NoError(t, err)
	require.Equal(t, model.UploadSucceeded, job.Status)
	require.Equal(t, 2, job.Attempts, "flaky first attempt plus one retry")
	require.Equal(t, 2, rebuilds, "payload must be rebuilt per attempt, never reused")
	require.Len(t, notices, 1, "the informational notice shows exactly once")
	require.Equal(t, []time.Duration{800 * time.Millisecond}, timer.waits)

	// Both submissions carried a full payload: the consumed reader from
	// attempt 1 was not resubmitted.
	require.Equal(t, "webp-bytes", transport.submissions[0].payload)
	require.Equal(t, "webp-bytes", transport.submissions[1].payload)
}

func TestSubmitExhaustsRetryBudget(t *testing.T) {
	transport := &fakeUploadTransport{results: []error{transientErr(), transientErr(), transientErr(), transientErr()}}
	timer := &fakeTimer{}
	var notices []string

	c := NewCoordinator(transport, nil)
	c.Timer = timer
	c.Notify = func(message string) { notices = append(notices, message) }

	var rebuilds int
	job := testJob()
	err := c.Submit(context.Background(), job, payloadFactory(&rebuilds))
	require.Error(t, err)
	require.True(t, model.IsTransient(err))
	require.Equal(t, model.UploadFailed, job.Status)
	require.Equal(t, 3, job.Attempts, "exactly the budget, no more")
	require.Len(t, transport.submissions, 3)
	require.Len(t, notices, 1, "later retries stay silent")
	require.Equal(t, []time.Duration{800 * time.Millisecond, 1600 * time.Millisecond}, timer.waits,
		"linear backoff, attempt-proportional")
}

func TestSubmitNeverRetriesServerRejection(t *testing.T) {
	transport := &fakeUploadTransport{results: []error{
		model.NewServerRejectedError("image too large"),
	}}
	var notices []string

	c := NewCoordinator(transport, nil)
	c.Timer = &fakeTimer{}
	c.Notify = func(message string) { notices = append(notices, message) }

	job := testJob()
	var rebuilds int
	err := c.Submit(context.Background(), job, payloadFactory(&rebuilds))
	require.Error(t, err)
	require.Equal(t, model.UploadFailed, job.Status)
	require.Equal(t, 1, job.Attempts, "rejections are terminal on the first answer")
	require.Empty(t, notices)
}

func TestSubmitPayloadFactoryFailureIsTerminal(t *testing.T) {
	transport := &fakeUploadTransport{}
	c := NewCoordinator(transport, nil)
	c.Timer = &fakeTimer{}

	job := testJob()
	err := c.Submit(context.Background(), job, func() (io.Reader, error) {
		return nil, errors.New("source file vanished")
	})
	require.Error(t, err)
	require.Equal(t, model.UploadFailed, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.Empty(t, transport.submissions, "nothing goes on the wire without a payload")
}
