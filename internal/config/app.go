package config

import (
	"net/http"

	"github.com/knadh/koanf/v2"
	"github.com/sikdanlog/sikdan-go/internal/cache"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/engagement"
	"github.com/sikdanlog/sikdan-go/internal/feed"
	"github.com/sikdanlog/sikdan-go/internal/thread"
	"github.com/sikdanlog/sikdan-go/internal/tokenstore"
	"github.com/sikdanlog/sikdan-go/internal/transport"
	"github.com/sikdanlog/sikdan-go/internal/upload"
	"go.uber.org/zap"
)

type ClientConfig struct {
	Log        *zap.Logger
	Config     *koanf.Koanf
	HTTPClient *http.Client
}

// Client is the assembled SDK: one transport, one token store, one view
// cache, and the coordinators every screen goes through.
type Client struct {
	Transport  *transport.Client
	Tokens     *tokenstore.Store
	Cache      *cache.Store
	Engagement *engagement.Coordinator
	Uploads    *upload.Coordinator
	Feed       *feed.Service
	Threads    *thread.Builder
}

func NewClient(config *ClientConfig) (*Client, error) {
	tokens := tokenstore.NewStore(config.Config.String("SIKDAN_TOKEN_PATH"), config.Log)
	apiTransport := transport.NewClient(config.Config.String("SIKDAN_API_BASE_URL"), config.HTTPClient, tokens, config.Log)

	viewCache, err := cache.NewStore(constant.VIEW_CACHE_SIZE)
	if err != nil {
		return nil, err
	}

	uploadCoordinator := upload.NewCoordinator(apiTransport, config.Log)

	return &Client{
		Transport:  apiTransport,
		Tokens:     tokens,
		Cache:      viewCache,
		Engagement: engagement.NewCoordinator(apiTransport, viewCache, tokens, config.Log),
		Uploads:    uploadCoordinator,
		Feed:       feed.NewService(apiTransport, uploadCoordinator, viewCache, config.Log),
		Threads:    thread.NewBuilder(config.Log),
	}, nil
}
