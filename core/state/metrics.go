package state

import "github.com/tos-network/ratingd/metrics"

var (
	accountCreatedMeter   = metrics.NewRegisteredMeter("state/create/account", nil)
	accountUpdatedMeter   = metrics.NewRegisteredMeter("state/update/account", nil)
	accountCommittedMeter = metrics.NewRegisteredMeter("state/commit/account", nil)
	stateRevertedMeter    = metrics.NewRegisteredMeter("state/revert", nil)
	cacheHitMeter         = metrics.NewRegisteredMeter("state/cache/hit", nil)
	cacheMissMeter        = metrics.NewRegisteredMeter("state/cache/miss", nil)
	commitTimer           = metrics.NewRegisteredTimer("state/commit/time", nil)
)
