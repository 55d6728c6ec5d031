// Package cli wires together the Cobra command tree for the pa binary.
//
// The root command renders a named prompt; subcommands list, show and
// validate the library, concatenate raw parts, emit shell completions,
// seed a default library and update the binary. Every path ends in one of
// the Exit* codes so scripts can tell failures apart.
package cli
