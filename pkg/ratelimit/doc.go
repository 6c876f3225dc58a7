// Package ratelimit paces calls to the text-generation service.
//
// Generation is sequential, so pacing only matters for accounts with a low
// requests-per-minute quota. New(0) returns a limiter that never blocks.
package ratelimit
