package lingocache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ZaguanLabs/lingocache"
	"github.com/ZaguanLabs/lingocache/provider"
)

// Benchmarks for performance validation

func BenchmarkTranslate_CacheHit(b *testing.B) {
	svc := lingocache.New(b.TempDir(), provider.NewMockGenerator(),
		lingocache.WithBatchDelay(time.Millisecond),
	)
	ctx := context.Background()

	if _, err := svc.Translate(ctx, "es_ES", "Hello"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Translate(ctx, "es_ES", "Hello"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslate_ColdPartition(b *testing.B) {
	svc := lingocache.New(b.TempDir(), provider.NewMockGenerator(),
		lingocache.WithBatchSize(64),
		lingocache.WithBatchDelay(time.Millisecond),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Translate(ctx, "fr_FR", fmt.Sprintf("text-%d", i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTranslateAll_Coalesced(b *testing.B) {
	texts := make([]string, 32)
	for i := range texts {
		texts[i] = fmt.Sprintf("line-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		svc := lingocache.New(b.TempDir(), provider.NewMockGenerator(),
			lingocache.WithBatchSize(32),
			lingocache.WithBatchDelay(time.Millisecond),
		)
		b.StartTimer()

		if _, err := svc.TranslateAll(context.Background(), "fr_FR", texts); err != nil {
			b.Fatal(err)
		}
	}
}
