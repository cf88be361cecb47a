// Package envfile parses environment overlay files and merges them into a
// process environment.
//
// Line tokenization, quoting, and escaping are delegated to the gotenv
// dotenv parser; this package adds what the launch contract needs on top:
// per-line errors, a stricter key grammar, deterministic ordering, and
// merge semantics that never override the parent process.
//
// # Grammar
//
//   - Blank lines and lines whose first non-space character is '#' are
//     ignored.
//   - Every other line must hold one KEY=VALUE assignment, with an
//     optional "export " prefix. Values must not span lines.
//   - KEY must match [A-Za-z_][A-Za-z0-9_]*. This is narrower than what
//     the dotenv format allows; keys it would accept but the bot's
//     environment cannot express (leading digits, dots) are rejected.
//   - VALUE follows dotenv rules: surrounding single or double quotes are
//     stripped, double-quoted values get escape and $VAR expansion,
//     single-quoted values are literal, and a '#' in an unquoted value
//     starts a comment.
//   - A malformed line aborts parsing with a *ParseError naming the line.
//   - Duplicate keys are allowed within a file; the last occurrence wins.
//
// # Merge semantics
//
// Merge adds overlay entries to a base environment only for keys the base
// does not already define. Variables already exported by the parent process
// always win over file values.
//
//	overlay, err := envfile.Load(".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env := envfile.Merge(os.Environ(), overlay)
package envfile
