// Package cache keeps synthesized narration audio so a spread that has been
// read once does not need another round trip. It has an in-memory LRU tier
// (L1) and an optional zstd-compressed disk tier (L2) that survives
// restarts.
package cache
