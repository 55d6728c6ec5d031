// Package library loads and checks a prompt library configuration.
//
// A library lives in one directory: a base config.toml plus any number of
// override fragments under conf.d/*.toml. [Merge] folds the base file and the
// overrides (in byte-wise lexical filename order) into a single [Config];
// later definitions of a prompt replace earlier ones wholesale. [Load] does
// the same but refuses a namespace holding structurally invalid definitions.
//
// [Resolve] picks the directory a prompt's fragments are read from, and
// [Validate] walks a merged [Config] and reports problems as [Diagnostic]
// values without touching it.
package library
