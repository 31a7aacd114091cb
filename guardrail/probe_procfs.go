// probe_procfs.go implements CPU load sampling via /proc/stat.

package guardrail

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/xsync"
)

// ProcFSCPULoad samples the system-wide CPU utilization from /proc/stat.
// The first sample has no baseline and reports the since-boot average.
type ProcFSCPULoad struct {
	Locker xsync.Mutex

	fs        procfs.FS
	prevIdle  float64
	prevTotal float64
	seeded    bool
}

var _ CPULoadProber = (*ProcFSCPULoad)(nil)

func NewProcFSCPULoad() (*ProcFSCPULoad, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("unable to open procfs: %w", err)
	}
	return &ProcFSCPULoad{fs: fs}, nil
}

func (p *ProcFSCPULoad) CPULoadPercent(ctx context.Context) (float64, error) {
	stat, err := p.fs.Stat()
	if err != nil {
		return 0, fmt.Errorf("unable to read /proc/stat: %w", err)
	}

	c := stat.CPUTotal
	idle := c.Idle + c.Iowait
	total := idle + c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal

	return xsync.DoR1(ctx, &p.Locker, func() float64 {
		dIdle := idle - p.prevIdle
		dTotal := total - p.prevTotal
		seeded := p.seeded

		p.prevIdle = idle
		p.prevTotal = total
		p.seeded = true

		if !seeded || dTotal <= 0 {
			if total <= 0 {
				return 0
			}
			load := 100 * (total - idle) / total
			logger.Tracef(ctx, "no CPU load baseline yet; since-boot average: %.1f%%", load)
			return load
		}
		return 100 * (dTotal - dIdle) / dTotal
	}), nil
}
