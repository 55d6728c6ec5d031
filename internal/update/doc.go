// Package update replaces the running pa binary with a build published as a
// GitHub release asset.
package update
