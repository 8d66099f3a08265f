package ai

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// CachingProvider memoizes embeddings by a cheap content hash so repeated
// texts (canned section questions, re-asked queries) skip the network call.
// Generation is never cached.
type CachingProvider struct {
	inner Provider

	mu    sync.RWMutex
	cache map[uint64][]float32
}

func NewCachingProvider(inner Provider) *CachingProvider {
	return &CachingProvider{
		inner: inner,
		cache: make(map[uint64][]float32),
	}
}

func (p *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := xxhash.Sum64String(text)

	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = vec
	p.mu.Unlock()

	return vec, nil
}

func (p *CachingProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.inner.Generate(ctx, prompt)
}

func (p *CachingProvider) Close() error { return p.inner.Close() }

// Size returns the number of cached embeddings.
func (p *CachingProvider) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}
