package resources

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/mem"
)

// ErrMemoryPressure is returned by Admit when available memory is below the
// configured floor.
var ErrMemoryPressure = errors.New("insufficient available memory")

// Probe reports the memory currently available to new work, in bytes.
type Probe interface {
	Available(ctx context.Context) (uint64, error)
}

// SystemProbe reads available memory from the operating system.
type SystemProbe struct{}

// Available implements Probe.
func (SystemProbe) Available(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}
	return vm.Available, nil
}

// StaticProbe always reports the same amount. Useful in tests.
type StaticProbe uint64

// Available implements Probe.
func (p StaticProbe) Available(context.Context) (uint64, error) {
	return uint64(p), nil
}

// Policy sizes the worker pool and sheds work under memory pressure.
type Policy struct {
	// MaxWorkers is the configured upper bound on concurrent work units.
	MaxWorkers int

	// PerWorkerBytes is the memory budget assumed for one work unit.
	PerWorkerBytes uint64

	// MinAvailableBytes is the floor below which new units are refused.
	MinAvailableBytes uint64

	// Probe reports available memory. Nil means SystemProbe.
	Probe Probe

	// CPUs overrides runtime.NumCPU. Zero means the runtime value.
	CPUs int
}

func (p Policy) probe() Probe {
	if p.Probe == nil {
		return SystemProbe{}
	}
	return p.Probe
}

func (p Policy) cpus() int {
	if p.CPUs > 0 {
		return p.CPUs
	}
	return runtime.NumCPU()
}

// PoolSize returns max(1, min(MaxWorkers, 2*CPUs, available/PerWorkerBytes)).
//
// If the probe fails, the memory term is ignored.
func (p Policy) PoolSize(ctx context.Context) int {
	size := 2 * p.cpus()
	if p.MaxWorkers > 0 {
		size = min(size, p.MaxWorkers)
	}

	if p.PerWorkerBytes > 0 {
		if avail, err := p.probe().Available(ctx); err == nil {
			byMem := avail / p.PerWorkerBytes
			if byMem < uint64(size) {
				size = int(byMem)
			}
		}
	}

	return max(1, size)
}

// Admit reports whether a new unit of work may start.
//
// It returns an error wrapping ErrMemoryPressure when available memory is
// below MinAvailableBytes. A failing probe admits the work.
func (p Policy) Admit(ctx context.Context) error {
	if p.MinAvailableBytes == 0 {
		return nil
	}

	avail, err := p.probe().Available(ctx)
	if err != nil {
		return nil
	}
	if avail < p.MinAvailableBytes {
		return fmt.Errorf("%w: %d MiB available, %d MiB required",
			ErrMemoryPressure, avail>>20, p.MinAvailableBytes>>20)
	}
	return nil
}
