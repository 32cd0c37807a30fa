package metrics

import (
	"context"
	"time"
)

var processCPUGauge = NewRegisteredGauge("system/cpu/proctime", nil)

// CollectProcessMetrics samples process CPU time every refresh until ctx is
// cancelled.
func CollectProcessMetrics(ctx context.Context, refresh time.Duration) {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		processCPUGauge.Update(getProcessCPUTime())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
