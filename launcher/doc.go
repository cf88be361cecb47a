// Package launcher prepares and starts the bot process.
//
// A launch is a linear sequence of checks, each of which either passes or
// aborts the launch:
//
//  1. Resolve a Python interpreter on the search path.
//  2. Gate on the supported interpreter version range, if one is configured.
//  3. Require the dependency manifest to exist.
//  4. Install dependencies from the manifest, failing on a non-zero
//     installer exit.
//  5. Merge the optional environment overlay file into the process
//     environment (existing variables win).
//  6. Check the bot token variable; by default a missing token is a
//     warning, with RequireToken it aborts the launch.
//  7. Start the entry point with the merged environment, forward interrupt
//     and termination signals, and report the child's exit code.
//
// There are no retries and no concurrency. Failures carry typed errors so
// callers can distinguish a missing runtime from a failed install.
package launcher
