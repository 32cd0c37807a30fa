package runtime

import "github.com/tos-network/ratingd/metrics"

var (
	txExecutedMeter = metrics.NewRegisteredMeter("runtime/tx/executed", nil)
	txFailedMeter   = metrics.NewRegisteredMeter("runtime/tx/failed", nil)
	txRejectedMeter = metrics.NewRegisteredMeter("runtime/tx/rejected", nil)
	txReplayedMeter = metrics.NewRegisteredMeter("runtime/tx/replayed", nil)
	invokeMeter     = metrics.NewRegisteredMeter("runtime/invoke", nil)
	txExecTimer     = metrics.NewRegisteredTimer("runtime/tx/exec", nil)
)
