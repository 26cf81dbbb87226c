// Package fork provides race-free process creation and supervision.
//
// A child started with Fork is placed in its own process group and watched by
// a leaf helper process that holds the read end of a private guard pipe. The
// write end of that pipe lives inside the parent's ChildHandle. If the handle
// is released, or the parent dies for any reason at all (including SIGKILL),
// the kernel closes the write end, the helper's blocking read returns, and the
// helper SIGKILLs the child's entire process group. A supervised tree can
// therefore never outlive the process that knows about it.
//
// Because the Go runtime cannot survive a raw fork(2), the child context is
// realized by re-executing the current binary: callers register child entry
// points with Register and dispatch them by calling Main first thing in
// main(). Fork returns the parent-side handle; the registered function body is
// the child side.
//
// Full supervision is only available on Unix. The Windows build exposes the
// same types but Fork reports ErrUnsupported; callers needing Windows process
// trees must rely on job objects or other host-specific tooling.
package fork
