package params

import "github.com/tos-network/ratingd/common"

// Well-known program identities.
var (
	// SystemProgramID is the account-allocation service. Every fresh account
	// is created by it and it is the only program that may fund and assign a
	// slot that does not yet exist.
	SystemProgramID = common.Address{}

	// RatingProgramID is the default identity the rating program is deployed
	// under. Nodes may override it in their configuration.
	RatingProgramID = common.MustBase58ToAddress("CenYq6bDRB7p73EjsPEpiYN7uveyPUTdXkDkgUduboaN")
)
