// Package resources bounds wallpaper work by CPU count and available memory.
//
// A Policy answers two questions: how many work units may run at once
// (PoolSize) and whether one more may start right now (Admit).
//
//	policy := resources.Policy{
//	    MaxWorkers:        8,
//	    PerWorkerBytes:    100 << 20,
//	    MinAvailableBytes: 500 << 20,
//	}
//	n := policy.PoolSize(ctx)
//
// Available memory comes from a Probe; SystemProbe uses gopsutil.
package resources
