//go:build windows || js
// +build windows js

package metrics

// getProcessCPUTime returns 0 on platforms without getrusage.
func getProcessCPUTime() int64 {
	return 0
}
