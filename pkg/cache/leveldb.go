package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// expiryLen is the size of the expiry header stored in front of each value.
const expiryLen = 8

// LevelDBCache keeps entries in a LevelDB directory, so results survive
// between runs. Each value is prefixed with its expiry as big-endian Unix
// nanoseconds; zero means no expiry.
type LevelDBCache struct {
	db         *leveldb.DB
	defaultTTL time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLevelDBCache opens (or creates) the store at opts.Path.
func NewLevelDBCache(opts *Options) (*LevelDBCache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Path == "" {
		return nil, errors.New("leveldb cache: path is required")
	}

	db, err := leveldb.OpenFile(opts.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldb open %s: %w", opts.Path, err)
	}
	return newLevelDBCache(db, opts.DefaultTTL), nil
}

// NewLevelDBMemCache returns a LevelDB cache on in-memory storage.
func NewLevelDBMemCache(defaultTTL time.Duration) (*LevelDBCache, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return newLevelDBCache(db, defaultTTL), nil
}

func newLevelDBCache(db *leveldb.DB, defaultTTL time.Duration) *LevelDBCache {
	return &LevelDBCache{db: db, defaultTTL: defaultTTL, now: time.Now}
}

func (c *LevelDBCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			c.misses.Add(1)
			return nil, ErrKeyNotFound
		}
		return nil, mapClosed(err)
	}

	value, live := c.decode(raw)
	if !live {
		c.misses.Add(1)
		_ = c.db.Delete([]byte(key), nil) //nolint:errcheck // expired entry, best effort
		return nil, ErrKeyNotFound
	}

	c.hits.Add(1)
	return value, nil
}

func (c *LevelDBCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	raw := make([]byte, expiryLen+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw, uint64(c.now().Add(ttl).UnixNano()))
	}
	copy(raw[expiryLen:], value)

	return mapClosed(c.db.Put([]byte(key), raw, nil))
}

func (c *LevelDBCache) Delete(ctx context.Context, key string) error {
	return mapClosed(c.db.Delete([]byte(key), nil))
}

func (c *LevelDBCache) Exists(ctx context.Context, key string) (bool, error) {
	raw, err := c.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return false, nil
		}
		return false, mapClosed(err)
	}
	_, live := c.decode(raw)
	return live, nil
}

func (c *LevelDBCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	var rng *util.Range
	if star := strings.IndexByte(pattern, '*'); star > 0 {
		rng = util.BytesPrefix([]byte(pattern[:star]))
	}

	iter := c.db.NewIterator(rng, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		if matchPattern(pattern, string(iter.Key())) {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Error(); err != nil {
		return 0, mapClosed(err)
	}
	if batch.Len() == 0 {
		return 0, nil
	}
	if err := c.db.Write(batch, nil); err != nil {
		return 0, mapClosed(err)
	}
	return int64(batch.Len()), nil
}

func (c *LevelDBCache) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		KeysByPrefix: make(map[string]int64),
		Backend:      BackendLevelDB,
	}
	stats.HitRate = hitRate(stats.Hits, stats.Misses)

	iter := c.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		value, live := c.decode(iter.Value())
		if !live {
			continue
		}
		stats.TotalKeys++
		stats.MemoryBytes += int64(len(value))
		stats.KeysByPrefix[extractPrefix(string(iter.Key()))]++
	}
	if err := iter.Error(); err != nil {
		return nil, mapClosed(err)
	}
	return stats, nil
}

func (c *LevelDBCache) Clear(ctx context.Context) error {
	_, err := c.DeleteByPattern(ctx, "*")
	return err
}

func (c *LevelDBCache) Close() error {
	err := c.db.Close()
	if errors.Is(err, leveldb.ErrClosed) {
		return nil
	}
	return err
}

// decode splits raw into its value and reports whether it is still live.
// Values too short to carry the header are treated as expired.
func (c *LevelDBCache) decode(raw []byte) ([]byte, bool) {
	if len(raw) < expiryLen {
		return nil, false
	}
	exp := int64(binary.BigEndian.Uint64(raw))
	if exp != 0 && c.now().UnixNano() > exp {
		return nil, false
	}
	return append([]byte(nil), raw[expiryLen:]...), true
}

func mapClosed(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrCacheClosed
	}
	return err
}
