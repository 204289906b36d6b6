package cache

import (
	"github.com/sarchlab/cachesim/hooking"
)

// HookPosAccess marks that an access completed. The item of the hook context
// is the AccessResult.
var HookPosAccess = &hooking.HookPos{Name: "Cache Access"}

// HookPosReset marks that a cache was created by Reset. The item of the hook
// context is the Snapshot of the new cache.
var HookPosReset = &hooking.HookPos{Name: "Cache Reset"}

func (c *Cache) traceAccess(result AccessResult) {
	if c.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item:   result,
	}

	c.InvokeHook(ctx)
}

func (c *Cache) traceReset() {
	if c.NumHooks() == 0 {
		return
	}

	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    HookPosReset,
		Item:   c.State(),
	}

	c.InvokeHook(ctx)
}
