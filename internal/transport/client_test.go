package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sikdanlog/sikdan-go/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token() string {
	return string(s)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, server.Client(), staticToken(token), zap.NewNop()), server
}

func TestGetDecodesEnvelopeData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/p1/comments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"viewHash":"c1","body":"hi"}]}`))
	}, "")

	var comments []model.Comment
	err := client.Get(context.Background(), "/posts/p1/comments", &comments)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "c1", comments[0].ViewHash)
	require.Equal(t, "hi", comments[0].Body)
}

func TestServerRejectionCarriesMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"Comment body is required"}`))
	}, "")

	err := client.Post(context.Background(), "/posts/p1/comments", map[string]string{"body": ""}, nil)
	require.Error(t, err)
	require.False(t, model.IsTransient(err), "a structured rejection is never transient")
	require.Contains(t, err.Error(), "Comment body is required")
}

func TestUndecodableBodyIsServerRejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	}, "")

	err := client.Get(context.Background(), "/feed", nil)
	require.Error(t, err)
	require.False(t, model.IsTransient(err))
}

func TestUnreachableServerIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(server.URL, &http.Client{}, nil, zap.NewNop())
	server.Close()

	err := client.Get(context.Background(), "/feed", nil)
	require.Error(t, err)
	require.True(t, model.IsTransient(err), "a connection failure is retry-eligible")
}

func TestBearerTokenAttachedWhenPresent(t *testing.T) {
	var seen string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}, "tok-123")

	require.NoError(t, client.Get(context.Background(), "/feed", nil))
	require.Equal(t, "Bearer tok-123", seen)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var seen string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}, "")

	require.NoError(t, client.Get(context.Background(), "/feed", nil))
	require.Empty(t, seen)
}

func TestSubmitMultipartCarriesFieldsAndFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "2026-08", r.FormValue("monthTag"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "cover.webp", header.Filename)
		require.Equal(t, "image/webp", header.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"success":true}`))
	}, "tok-123")

	err := client.SubmitMultipart(
		context.Background(),
		"/months/2026-08/cover",
		map[string]string{"monthTag": "2026-08"},
		"image",
		"cover.webp",
		"image/webp",
		strings.NewReader("webp-bytes"),
		nil,
	)
	require.NoError(t, err)
}
