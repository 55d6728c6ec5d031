// Command pa assembles prompts from a library of text fragments and
// templates.
//
// Usage:
//
//	pa [--verbose] [--config-dir DIR] [--data FILE] [--redact] <prompt> [args...]
//	pa list | show <prompt> | validate | parts <file>... | completions <shell>
//	pa init | self-update | version
//
// Prompts are defined in config.toml and conf.d/*.toml under the library
// directory. See "pa --help" for details.
package main
