package constant

import "time"

const (
	DEFAULT_LIMIT = 20
	MAX_LIMIT     = 100

	MAX_FILE_SIZE = 5 * 1024 * 1024

	MAX_UPLOAD_ATTEMPTS     = 3
	UPLOAD_BACKOFF_INTERVAL = 800 * time.Millisecond

	MAX_REPLY_DEPTH = 3

	VIEW_CACHE_SIZE = 500

	CACHE_COMMENTS_TTL     = 5 * time.Minute
	CACHE_ENGAGEMENT_TTL   = 5 * time.Minute
	CACHE_MONTH_IMAGES_TTL = 10 * time.Minute
)
