// probe_sysfs_thermal.go implements thermal pressure probing via sysfs.

package guardrail

import (
	"context"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/xaionaro-go/smoothmotion/logger"
)

const defaultThermalZonePath = "/sys/class/thermal/thermal_zone0"

// SysfsThermal classifies the thermal pressure from a sysfs thermal
// zone's temperature, in degrees Celsius.
type SysfsThermal struct {
	ZonePath  string
	FairC     float64
	SeriousC  float64
	CriticalC float64
}

var _ ThermalProber = (*SysfsThermal)(nil)

func NewSysfsThermal() *SysfsThermal {
	return &SysfsThermal{
		ZonePath:  defaultThermalZonePath,
		FairC:     70,
		SeriousC:  85,
		CriticalC: 95,
	}
}

func (p *SysfsThermal) ThermalState(ctx context.Context) ThermalState {
	raw, err := os.ReadFile(path.Join(p.ZonePath, "temp"))
	if err != nil {
		logger.Tracef(ctx, "unable to read the thermal zone: %v", err)
		return ThermalStateNominal
	}
	milliC, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		logger.Tracef(ctx, "unable to parse the thermal zone value: %v", err)
		return ThermalStateNominal
	}

	switch tempC := milliC / 1000; {
	case tempC >= p.CriticalC:
		return ThermalStateCritical
	case tempC >= p.SeriousC:
		return ThermalStateSerious
	case tempC >= p.FairC:
		return ThermalStateFair
	}
	return ThermalStateNominal
}
