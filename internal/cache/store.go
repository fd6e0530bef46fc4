package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sikdanlog/sikdan-go/internal/constant"
)

// Named key families. Coordinators invalidate by key, never by scanning.
func CommentsKey(postHash string) string {
	return fmt.Sprintf("post:%s:comments", postHash)
}

func EngagementKey(postHash string) string {
	return fmt.Sprintf("post:%s:engagement", postHash)
}

func MonthImagesKey(monthTag string) string {
	return fmt.Sprintf("month:%s:images", monthTag)
}

type item struct {
	data      any
	expiresAt time.Time
}

// Store is the client-local view cache shared by every screen. It is the
// only shared mutable state in the client; exactly one coordinator writes a
// given entry per operation and the last write wins.
type Store struct {
	lruCache *lru.Cache[string, item]
	now      func() time.Time
}

func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = constant.VIEW_CACHE_SIZE
	}
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Store{
		lruCache: l,
		now:      time.Now,
	}, nil
}

func (s *Store) Set(key string, data any, ttl time.Duration) {
	s.lruCache.Add(key, item{
		data:      data,
		expiresAt: s.now().Add(ttl),
	})
}

func (s *Store) Get(key string) (any, bool) {
	val, ok := s.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	if s.now().After(val.expiresAt) {
		s.lruCache.Remove(key)
		return nil, false
	}

	return val.data, true
}

func (s *Store) Invalidate(key string) {
	s.lruCache.Remove(key)
}
