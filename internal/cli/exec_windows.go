//go:build windows

package cli

// No exec role on Windows: fork.Fork reports ErrUnsupported before any
// child could exist.
