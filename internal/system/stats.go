package system

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a point-in-time resource report for this process.
type Usage struct {
	CPUPercent   float64
	RSS          uint64
	Threads      int32
	HostMemTotal uint64
	HostMemUsed  float64 // Percent
}

// ProcessUsage samples CPU, memory and thread count of the running process.
func ProcessUsage(ctx context.Context) (Usage, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return Usage{}, fmt.Errorf("open process: %w", err)
	}

	var u Usage
	if u.CPUPercent, err = p.CPUPercentWithContext(ctx); err != nil {
		return Usage{}, fmt.Errorf("cpu: %w", err)
	}
	mi, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("memory: %w", err)
	}
	u.RSS = mi.RSS
	if u.Threads, err = p.NumThreadsWithContext(ctx); err != nil {
		return Usage{}, fmt.Errorf("threads: %w", err)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		u.HostMemTotal = vm.Total
		u.HostMemUsed = vm.UsedPercent
	}
	return u, nil
}

// String formats the report for the console.
func (u Usage) String() string {
	s := fmt.Sprintf("cpu %.1f%% | rss %s | threads %d", u.CPUPercent, FormatBytes(u.RSS), u.Threads)
	if u.HostMemTotal > 0 {
		s += fmt.Sprintf(" | host mem %.1f%% of %s", u.HostMemUsed, FormatBytes(u.HostMemTotal))
	}
	return s
}

func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
