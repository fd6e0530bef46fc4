package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/sikdanlog/sikdan-go/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/sikdanlog/sikdan-go/internal/transport"

// TokenSource supplies the bearer token for authenticated requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client issues JSON requests against the Sikdan API and decodes the
// {success, data, message} envelope every endpoint returns. Network-level
// failures classify as transient, success=false envelopes as server
// rejections.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Log        *zap.Logger
	Tracer     trace.Tracer
}

func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
		Tokens:     tokens,
		Log:        log,
		Tracer:     otel.Tracer(tracerName),
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	return c.do(ctx, method, path, "application/json", reqBody, out)
}

// SubmitMultipart sends one attachment attempt. The payload reader is
// consumed whether or not the request succeeds, so retrying callers must
// supply a fresh reader per attempt.
func (c *Client) SubmitMultipart(ctx context.Context, path string, fields map[string]string, fileField string, fileName string, mimeType string, payload io.Reader, out any) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, payload); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), body, out)
}

func (c *Client) do(ctx context.Context, method string, path string, contentType string, body io.Reader, out any) error {
	ctx, span := c.Tracer.Start(ctx, method+" "+path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Tokens != nil {
		if token := c.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		observability.WithContext(ctx, c.Log).Debug("request failed before a response arrived",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return model.NewTransientError(constant.ERR_TRANSIENT_MESSAGE, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewTransientError(constant.ERR_TRANSIENT_MESSAGE, err)
	}

	var envelope model.Envelope
	if err = sonic.Unmarshal(raw, &envelope); err != nil {
		// An undecodable body from an error status is a rejection we can't
		// explain; from a 2xx it means the contract is broken either way.
		observability.WithContext(ctx, c.Log).Warn("undecodable response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return model.NewServerRejectedError(constant.ERR_MALFORMED_RESPONSE_MESSAGE)
	}

	if !envelope.Success {
		return model.NewServerRejectedError(envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err = sonic.Unmarshal(envelope.Data, out); err != nil {
			return model.NewServerRejectedError(constant.ERR_MALFORMED_RESPONSE_MESSAGE)
		}
	}

	return nil
}
