// Package system wraps host introspection and process limits: worker-count
// defaults from the CPU topology, reorder-buffer clamping from available
// memory, and the file-descriptor limit raise the encoder subprocesses need.
package system

import (
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so that parallel workers and
// encoder pipes do not exhaust the default soft limit. Failures are not
// fatal; the caller may log the returned error and continue.
func InitResourceLimits() error {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return err
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	return syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
}

// DefaultWorkers returns the render worker count to use when none is
// configured: one worker per physical core, which keeps hyperthread pairs
// from fighting over the same raster units.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ClampFrameBuffer bounds the reorder buffer's frame count so out-of-order
// frames cannot exhaust memory. frameBytes is the byte size of one RGBA
// frame; at most a quarter of the currently available memory is budgeted.
func ClampFrameBuffer(requested int, frameBytes int) int {
	if requested < 1 {
		requested = 1
	}
	if frameBytes <= 0 {
		return requested
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return requested
	}
	budget := int(vm.Available / 4 / uint64(frameBytes))
	if budget < 1 {
		budget = 1
	}
	if requested > budget {
		return budget
	}
	return requested
}
