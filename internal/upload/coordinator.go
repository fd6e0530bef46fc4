package upload

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/sikdanlog/sikdan-go/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/sikdanlog/sikdan-go/internal/upload"

type Transport interface {
	SubmitMultipart(ctx context.Context, path string, fields map[string]string, fileField string, fileName string, mimeType string, payload io.Reader, out any) error
}

// PayloadFactory builds a fresh payload reader for one attempt. The
// transport consumes the reader even on failure, so a reader is never
// reused across attempts.
type PayloadFactory func() (io.Reader, error)

// linearBackOff waits attempt*interval before retry n (800ms, 1600ms, ...)
// and stops once the attempt budget is spent. Deliberately linear, not
// exponential.
type linearBackOff struct {
	interval    time.Duration
	maxAttempts int
	attempt     int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.attempt >= b.maxAttempts {
		return backoff.Stop
	}
	return time.Duration(b.attempt) * b.interval
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// Coordinator submits attachments with a bounded, strictly sequential retry
// budget. Transient failures retry up to the budget; validation and server
// rejections terminate immediately. Notify fires once, on the first retry
// only, so the user learns the network is flaky without being nagged.
type Coordinator struct {
	Transport Transport
	Log       *zap.Logger
	Tracer    trace.Tracer

	// Notify surfaces the single informational retry notice. Optional.
	Notify func(message string)
	// Timer overrides the backoff wait in tests. Nil uses real time.
	Timer backoff.Timer
}

func NewCoordinator(transport Transport, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		Transport: transport,
		Log:       log,
		Tracer:    otel.Tracer(tracerName),
	}
}

// Submit runs one job to a terminal status. On return the job is either
// UploadSucceeded or UploadFailed; the attempt counter holds exactly how
// many submissions went out.
func (c *Coordinator) Submit(ctx context.Context, job *model.UploadJob, payload PayloadFactory) error {
	ctx, span := c.Tracer.Start(ctx, "upload.Submit")
	defer span.End()

	log := observability.WithContext(ctx, c.Log)
	job.Status = model.UploadPending

	fields := map[string]string{}
	if job.MonthTag != "" {
		fields["monthTag"] = job.MonthTag
	}

	operation := func() error {
		job.Attempts++

		reader, err := payload()
		if err != nil {
			return backoff.Permanent(err)
		}

		err = c.Transport.SubmitMultipart(ctx, job.Endpoint, fields, job.FieldName, job.FileName, job.MimeType, reader, nil)
		if err == nil {
			return nil
		}
		if model.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		if job.Attempts == 1 && c.Notify != nil {
			c.Notify("Retrying upload due to network instability")
		}
		log.Warn("transient upload failure, will retry",
			zap.String("jobId", job.Id.String()),
			zap.Int("attempt", job.Attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	b := &linearBackOff{
		interval:    constant.UPLOAD_BACKOFF_INTERVAL,
		maxAttempts: constant.MAX_UPLOAD_ATTEMPTS,
	}

	err := backoff.RetryNotifyWithTimer(operation, backoff.WithContext(b, ctx), notify, c.Timer)
	if err != nil {
		job.Status = model.UploadFailed
		log.Warn("upload reached terminal failure",
			zap.String("jobId", job.Id.String()),
			zap.String("endpoint", job.Endpoint),
			zap.Int("attempts", job.Attempts),
			zap.Error(err),
		)
		return err
	}

	job.Status = model.UploadSucceeded
	log.Info("upload succeeded",
		zap.String("jobId", job.Id.String()),
		zap.String("endpoint", job.Endpoint),
		zap.Int("attempts", job.Attempts),
	)
	return nil
}
