// Package assemble turns prompt definitions into text.
//
// Sequence prompts are the concatenation of their fragment files with
// positional placeholders {0} through {8} replaced by arguments. "{{" and
// "}}" produce literal braces; anything else is copied as it is. Template
// prompts are rendered by a Jinja2-compatible engine against a JSON or TOML
// data file.
//
// The [Assembler] ties this to a merged [library.Config]: it renders by
// prompt name, concatenates ad hoc parts, and describes prompts for
// listings.
package assemble
