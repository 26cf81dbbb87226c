package fork

import (
	"fmt"
	"sort"
	"sync"
)

// Environment markers used to dispatch re-executed children. They are
// consumed and cleared by Main before any role function runs.
const (
	envRole = "WARDEN_FORK_ROLE"
	envMode = "WARDEN_FORK_MODE"

	envWatchdogPgid   = "WARDEN_WATCHDOG_PGID"
	envWatchdogVictim = "WARDEN_WATCHDOG_VICTIM"
)

const (
	modeSupervised   = "supervised"
	modeDetached     = "detached"
	modeIntermediate = "intermediate"
	modeWatchdog     = "watchdog"
)

var (
	rolesMu sync.RWMutex
	roles   = make(map[string]func())
)

// Register associates a child entry point with a name. It must be called
// before Main, typically from an init function, and in the same binary on
// both sides of the fork. Registering the same name twice panics.
func Register(name string, fn func()) {
	if name == "" || fn == nil {
		panic("fork: Register requires a name and a function")
	}
	rolesMu.Lock()
	defer rolesMu.Unlock()
	if _, dup := roles[name]; dup {
		panic(fmt.Sprintf("fork: role %q registered twice", name))
	}
	roles[name] = fn
}

func lookupRole(name string) (func(), bool) {
	rolesMu.RLock()
	defer rolesMu.RUnlock()
	fn, ok := roles[name]
	return fn, ok
}

func registeredRoles() []string {
	rolesMu.RLock()
	defer rolesMu.RUnlock()
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
