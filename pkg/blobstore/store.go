package blobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// ErrNotFound は存在しない、失効済み、または解放済みのロケータを表します。
var ErrNotFound = errors.New("blob not found")

type entry struct {
	data      []byte
	mimeType  string
	expiresAt time.Time
}

// Store はアップロードされた画像を "blob:<uuid>" ロケータで一時的に保持するレジストリです。
// ブラウザの URL.createObjectURL に相当し、TTL を過ぎたデータは参照できなくなります。
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New は TTL を指定して Store を初期化します。ttl が 0 以下の場合は失効しません。
func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create はデータを登録してロケータを返します。
func (s *Store) Create(data []byte, mimeType string) string {
	locator := domain.LocalResourceScheme + uuid.NewString()

	e := entry{data: data, mimeType: mimeType}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[locator] = e
	s.mu.Unlock()

	return locator
}

// Fetch はロケータが指すバイト列と MIME タイプを返します。
// encoder.LocalFetcher を満たします。
func (s *Store) Fetch(ctx context.Context, locator string) ([]byte, string, error) {
	s.mu.Lock()
	e, ok := s.entries[locator]
	if ok && s.expired(e) {
		delete(s.entries, locator)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		slog.DebugContext(ctx, "blob が見つかりません", "locator", locator)
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return e.data, e.mimeType, nil
}

// Revoke はロケータを解放します。存在しない場合は false を返します。
func (s *Store) Revoke(locator string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[locator]; !ok {
		return false
	}
	delete(s.entries, locator)
	return true
}

// Sweep は失効したエントリをまとめて削除し、削除件数を返します。
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len は保持しているエントリ数を返します（失効済みを含む）。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunJanitor は ctx が終了するまで interval ごとに Sweep を実行します。
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.InfoContext(ctx, "失効した blob を削除しました", "count", n)
			}
		}
	}
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
