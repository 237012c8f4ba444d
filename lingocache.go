// Package lingocache provides a write-coalescing, persistence-backed
// translation cache.
//
// Lookups are served from a durable per-partition store. Misses for the
// same partition are collected into a batch that flushes once it reaches a
// size threshold or a quiescence delay elapses; each flush makes exactly
// one generator call, persists the results atomically, and resolves every
// waiting caller, including duplicates that piggybacked onto an already
// queued text.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/lingocache"
//	    "github.com/ZaguanLabs/lingocache/provider"
//	)
//
//	func main() {
//	    gen := provider.NewOpenAIGenerator(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    svc := lingocache.New("./locales", gen,
//	        lingocache.WithBatchSize(20),
//	        lingocache.WithBatchDelay(50*time.Millisecond),
//	    )
//
//	    text, err := svc.Translate(context.Background(), "fr_FR", "Hello")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(text) // Bonjour
//	}
package lingocache
