// Package provider defines generator implementations and collaborator-side
// policy wrappers (retry, rate limiting). The core never retries or
// throttles; that is this package's job.
package provider

import "github.com/ZaguanLabs/lingocache"

// Generator is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Generator = lingocache.Generator

// GenerateRequest is an alias to the main package type.
type GenerateRequest = lingocache.GenerateRequest
