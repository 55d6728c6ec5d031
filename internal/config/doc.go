// Package config resolves pa's application settings.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PA_CONFIG_DIR, PA_FORMAT, PA_VERBOSE, PA_GITHUB_TOKEN)
//  3. Built-in defaults
//
// The prompt library itself lives in the directory [ConfigDir] returns;
// [Init] seeds it with an example.
package config
