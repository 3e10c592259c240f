package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "layout:a"); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "layout:a", []byte(`{"panels":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != `{"panels":[]}` {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)

	path := fc.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)

	key := NewScopedKeyer(nil, "dev:").LayoutKey("h", LayoutKeyOpts{Strategy: "free"})
	if err := c.Set(ctx, key, []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(dir, fc.path(key))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.ToSlash(rel), "layout/") {
		t.Errorf("entry stored at %s, want under layout/", rel)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(fc.path(key)), ".entry-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestKeyKind(t *testing.T) {
	tests := []struct{ key, want string }{
		{"layout:abc", "layout"},
		{"v1.2.0:artifact:abc", "artifact"},
		{"plain", "misc"},
	}
	for _, tt := range tests {
		if got := keyKind(tt.key); got != tt.want {
			t.Errorf("keyKind(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileCacheStatsAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)

	k := NewDefaultKeyer()
	for i, key := range []string{
		k.LayoutKey("a", LayoutKeyOpts{}),
		k.LayoutKey("b", LayoutKeyOpts{}),
		k.ArtifactKey("a", ArtifactKeyOpts{Format: "svg"}),
	} {
		if err := c.Set(ctx, key, []byte("0123456789"[:i+1]), 0); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := fc.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if len(stats) != 2 || stats[0].Kind != KindArtifact || stats[1].Kind != KindLayout {
		t.Fatalf("Stats() = %+v, want artifact then layout", stats)
	}
	if stats[0].Entries != 1 || stats[1].Entries != 2 || stats[1].Expired != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats[1].Bytes == 0 {
		t.Error("Stats() reports no bytes")
	}

	n, err := fc.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(fc.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still holds %d entries", len(entries))
	}
	if stats, _ := fc.Stats(); len(stats) != 0 {
		t.Errorf("Stats() after Clear() = %+v", stats)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("bus")) != Hash([]byte("bus")) {
		t.Error("Hash() is not deterministic")
	}
	if Hash([]byte("bus")) == Hash([]byte("feeder")) {
		t.Error("Hash() collides on different inputs")
	}
	if got := len(Hash(nil)); got != 64 {
		t.Errorf("len(Hash()) = %d, want 64", got)
	}

	type p struct{ CellWidth float64 }
	if HashJSON(p{50}) == HashJSON(p{60}) {
		t.Error("HashJSON() ignores field values")
	}
	if HashJSON(func() {}) != Hash(nil) {
		t.Error("HashJSON() of an unencodable value should hash an empty document")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{ParamsHash: "p1", Strategy: "clustering"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{ParamsHash: "p1", Strategy: "free"})
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{ParamsHash: "p2", Strategy: "clustering"})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{ParamsHash: "p1", Strategy: "clustering"}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, KindLayout+":") {
		t.Errorf("LayoutKey prefix: %s", lk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, KindArtifact+":") {
		t.Errorf("ArtifactKey prefix: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "v1:")

	opts := LayoutKeyOpts{ParamsHash: "p", Strategy: "clustering"}
	if got, want := scoped.LayoutKey("h", opts), "v1:"+base.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "dot"}
	if got, want := scoped.ArtifactKey("h", aopts), "v1:"+base.ArtifactKey("h", aopts); got != want {
		t.Errorf("ArtifactKey = %s, want %s", got, want)
	}

	// nil inner falls back to the default keyer
	if NewScopedKeyer(nil, "x:").LayoutKey("h", opts) != "x:"+base.LayoutKey("h", opts) {
		t.Error("nil inner keyer should use DefaultKeyer")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("boom")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should be true")
	}
	if !errors.Is(err, base) {
		t.Error("Retryable should unwrap to the original error")
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	ctx := context.Background()

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(ErrNetwork)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d, want nil and 3", err, calls)
		}
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			return errors.New("permanent")
		})
		if err == nil || calls != 1 {
			t.Errorf("err=%v calls=%d, want error and 1", err, calls)
		}
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			return Retryable(ErrNetwork)
		})
		if !errors.Is(err, ErrNetwork) || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := b.Do(cctx, func() error { return Retryable(ErrNetwork) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache("ftp://nowhere"); err == nil {
		t.Error("expected error for non-redis scheme")
	}
}

func TestRedisCacheCanceledContext(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, hit, err := c.Get(ctx, "k"); err == nil || hit {
		t.Errorf("Get on canceled context: hit=%v err=%v", hit, err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	err := classify(opErr)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("net error should be a retryable ErrNetwork, got %v", err)
	}
	if IsRetryable(classify(errors.New("WRONGTYPE"))) {
		t.Error("server errors should not be retryable")
	}
}
