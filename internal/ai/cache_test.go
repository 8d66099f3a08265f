package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	embedErr error

	embedCalls    atomic.Int64
	generateCalls atomic.Int64
}

func (p *countingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.embedCalls.Add(1)
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	return []float32{float32(len(text)), 0, 0}, nil
}

func (p *countingProvider) Generate(context.Context, string) (string, error) {
	p.generateCalls.Add(1)
	return "generated", nil
}

func (p *countingProvider) Close() error { return nil }

func TestCachingProvider_EmbedMemoized(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner)

	first, err := p.Embed(context.Background(), "profile photo requirements")
	require.NoError(t, err)

	second, err := p.Embed(context.Background(), "profile photo requirements")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.embedCalls.Load())
	assert.Equal(t, 1, p.Size())

	_, err = p.Embed(context.Background(), "a different text")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.embedCalls.Load())
	assert.Equal(t, 2, p.Size())
}

func TestCachingProvider_ErrorsAreNotCached(t *testing.T) {
	inner := &countingProvider{embedErr: errors.New("upstream unavailable")}
	p := NewCachingProvider(inner)

	_, err := p.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, 0, p.Size())

	inner.embedErr = nil
	_, err = p.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.embedCalls.Load())
}

func TestCachingProvider_GenerateNeverCached(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner)

	for i := 0; i < 3; i++ {
		out, err := p.Generate(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "generated", out)
	}
	assert.Equal(t, int64(3), inner.generateCalls.Load())
}
