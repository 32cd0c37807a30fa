package node

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/rent"
	"github.com/tos-network/ratingd/internal/ratingapi"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/metrics"
)

const datadirDatabase = "ratingdata" // Path within the datadir to the key-value store

// Config represents a small collection of configuration values to fine tune
// the node. These values can be further extended by all registered services.
type Config struct {
	// DataDir is the file system folder the node should use for any data
	// storage requirements. An empty DataDir keeps all state in memory.
	DataDir string

	// DBCache is the megabytes of memory given to the database and the
	// account cache. DBHandles caps the database's open files.
	DBCache   int `toml:",omitempty"`
	DBHandles int `toml:",omitempty"`

	// HTTPHost is the host interface on which to start the HTTP server. If
	// this field is empty, no HTTP API endpoint will be started.
	HTTPHost string

	// HTTPPort is the TCP port number on which to start the HTTP server. The
	// default zero value is valid and will pick a port number randomly.
	HTTPPort int `toml:",omitempty"`

	// HTTPCors is the Cross-Origin Resource Sharing header to send to
	// requesting clients.
	HTTPCors []string `toml:",omitempty"`

	// ProgramID is the identity the rating program is deployed under.
	ProgramID common.Address

	// Rent is the storage fee schedule records are created under.
	Rent rent.Rent

	Faucet  ratingapi.FaucetConfig
	Log     log.Config
	Metrics metrics.Config
}

// HTTPEndpoint resolves an HTTP endpoint based on the configured host interface
// and port parameters.
func (c *Config) HTTPEndpoint() string {
	if c.HTTPHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// MetricsEndpoint is the stand-alone metrics listener address.
func (c *Config) MetricsEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Metrics.HTTP, c.Metrics.Port)
}

// ResolvePath resolves path in the data directory, or returns "" for an
// in-memory node.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, path)
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadConfig overlays the TOML file at path onto cfg. Unknown keys are
// errors.
func LoadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lerr *toml.LineError
	if errors.As(err, &lerr) {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// MarshalConfig renders cfg as TOML.
func MarshalConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}
