// Package redact scrubs secrets from assembled prompts before they are
// printed, so output piped into other tools does not carry credentials that
// happened to live in a fragment or a data file.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private key blocks, AWS credentials, bearer tokens, connection
// strings with passwords, and provider tokens (Anthropic, OpenAI, GitHub,
// Slack).
package redact
