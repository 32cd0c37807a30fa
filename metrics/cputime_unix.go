//go:build !windows && !js
// +build !windows,!js

package metrics

import (
	syscall "golang.org/x/sys/unix"

	"github.com/tos-network/ratingd/log"
)

// getProcessCPUTime retrieves the process' CPU time since program startup,
// in hundredths of a second.
func getProcessCPUTime() int64 {
	var usage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &usage); err != nil {
		log.Warn("Failed to retrieve CPU time", "err", err)
		return 0
	}
	return int64(usage.Utime.Sec+usage.Stime.Sec)*100 + int64(usage.Utime.Usec+usage.Stime.Usec)/10000 //nolint:unconvert
}
