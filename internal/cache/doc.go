// Package cache stores small JSON values on disk with an expiry.
//
// pa uses it to remember GitHub release lookups so that repeated
// "self-update --check" runs do not spend API rate limit. Entries are files
// named by the SHA-256 of their key under $XDG_CACHE_HOME/prompt-assembler
// (or the OS equivalent). Expired or unreadable entries count as misses.
package cache
