package node

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/internal/ratingapi"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/metrics"
	"github.com/tos-network/ratingd/params"
)

const (
	DefaultHTTPHost = "localhost" // Default host interface for the HTTP server
	DefaultHTTPPort = 8899        // Default TCP port for the HTTP server
)

// DefaultConfig contains reasonable default settings.
var DefaultConfig = Config{
	DataDir:   DefaultDataDir(),
	DBCache:   64,
	DBHandles: 256,
	HTTPHost:  DefaultHTTPHost,
	HTTPPort:  DefaultHTTPPort,
	ProgramID: params.RatingProgramID,
	Rent:      *rent.Default(),
	Faucet:    ratingapi.DefaultFaucetConfig,
	Log:       log.DefaultConfig,
	Metrics:   metrics.DefaultConfig,
}

// DefaultDataDir is the default data directory to use for the databases and
// other persistence requirements.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := homeDir()
	if home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Ratingd")
		case "windows":
			appdata := os.Getenv("LOCALAPPDATA")
			if appdata == "" {
				appdata = filepath.Join(home, "AppData", "Local")
			}
			return filepath.Join(appdata, "Ratingd")
		default:
			return filepath.Join(home, ".ratingd")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
