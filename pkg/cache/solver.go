package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SolverCache специализированный кэш для результатов решателя
type SolverCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedSolveResult is what is kept for one solved network. Flows are
// listed by network arc id, so they can be applied straight back onto a
// network with the same fingerprint.
type CachedSolveResult struct {
	MaxFlow           int64     `json:"max_flow"`
	Rounds            int       `json:"rounds"`
	Flows             []int64   `json:"flows"`
	CutSourceSide     []int     `json:"cut_source_side,omitempty"`
	CutArcs           []int     `json:"cut_arcs,omitempty"`
	CutCapacity       int64     `json:"cut_capacity"`
	ComputationTimeMs float64   `json:"computation_time_ms"`
	ComputedAt        time.Time `json:"computed_at"`
}

// NewSolverCache создаёт кэш для результатов решателя
func NewSolverCache(cache Cache, defaultTTL time.Duration) *SolverCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultOptions().DefaultTTL
	}
	return &SolverCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат.
// Отсутствие записи не является ошибкой: возвращается found == false.
func (sc *SolverCache) Get(ctx context.Context, fingerprint, variant string) (*CachedSolveResult, bool, error) {
	key := BuildSolveKey(fingerprint, variant)

	data, err := sc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedSolveResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённая запись: удаляем и считаем промахом
		_ = sc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (sc *SolverCache) Set(ctx context.Context, fingerprint, variant string, result *CachedSolveResult, ttl time.Duration) error {
	if result == nil {
		return errors.New("nil solve result")
	}
	if ttl <= 0 {
		ttl = sc.defaultTTL
	}

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode solve result: %w", err)
	}

	return sc.cache.Set(ctx, BuildSolveKey(fingerprint, variant), data, ttl)
}

// Invalidate удаляет все варианты решения для сети
func (sc *SolverCache) Invalidate(ctx context.Context, fingerprint string) (int64, error) {
	n, err := sc.cache.DeleteByPattern(ctx, BuildSolveKey(fingerprint, "*"))
	if err != nil {
		return n, err
	}
	if err := sc.cache.Delete(ctx, BuildSolveKey(fingerprint, "")); err != nil {
		return n, err
	}
	return n, nil
}

// Stats возвращает статистику нижележащего кэша
func (sc *SolverCache) Stats(ctx context.Context) (*Stats, error) {
	return sc.cache.Stats(ctx)
}

// Close закрывает нижележащий кэш
func (sc *SolverCache) Close() error {
	return sc.cache.Close()
}
