package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sikdanlog/sikdan-go/internal/config"
	"github.com/sikdanlog/sikdan-go/internal/observability"
	zapLog "go.uber.org/zap"
)

// Smoke tool for the admin console: fetches the feed and prints the first
// post's comment thread the way the app would render it.
func main() {
	time.Local = time.UTC

	zap := config.NewZap(os.Getenv("SIKDAN_LOG_LEVEL"))
	koanf := config.NewKoanf(zap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if endpoint := koanf.String("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := observability.Init(ctx, observability.Config{
			ServiceName:  "sikdan-go",
			Environment:  koanf.String("SIKDAN_ENVIRONMENT"),
			OtelEndpoint: endpoint,
			OtelHeaders:  koanf.String("OTEL_EXPORTER_OTLP_HEADERS"),
		}, zap)
		if err != nil {
			zap.Fatal("failed to initialize tracing", zapLog.Error(err))
		}
		defer shutdown(ctx)
	}

	client, err := config.NewClient(&config.ClientConfig{
		Log:        zap,
		Config:     koanf,
		HTTPClient: config.NewHTTPClient(koanf),
	})
	if err != nil {
		zap.Fatal("failed to assemble client", zapLog.Error(err))
	}

	if actor, err := client.Tokens.ActorHash(); err == nil {
		zap.Info("signed in", zapLog.String("actor", actor))
	} else {
		zap.Info("no stored session, reading anonymously")
	}

	posts, err := client.Feed.ListFeed(ctx, 0)
	if err != nil {
		zap.Fatal("failed to fetch feed", zapLog.Error(err))
	}
	zap.Info("fetched feed", zapLog.Int("posts", len(posts)))

	if len(posts) == 0 {
		return
	}

	post := posts[0]
	comments, err := client.Engagement.ListComments(ctx, post.ViewHash)
	if err != nil {
		zap.Fatal("failed to fetch comments", zapLog.Error(err))
	}

	engagement := client.Engagement.Engagement(post.ViewHash)
	fmt.Printf("%s — likes: %d, comments: %d\n", post.ViewHash, engagement.LikeCount, len(comments))

	// Depth-first print with an explicit stack, same shape the builder
	// guarantees for arbitrarily deep chains.
	stack := client.Threads.Build(comments)
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fmt.Printf("%s%s: %s\n", strings.Repeat("  ", node.Depth), node.Author.Nickname, node.DisplayBody())
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}

	_ = zap.Sync()
}
