package utils

import (
	"flag"
	"reflect"
	"testing"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/node"
	"github.com/urfave/cli/v2"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{"http://localhost:3000,*", []string{"http://localhost:3000", "*"}},
	}
	for _, tt := range tests {
		if got := SplitAndTrim(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func newFlagContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range append(append([]cli.Flag{}, NodeFlags...), LogFlags...) {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply %v: %v", f.Names(), err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetNodeConfigDefaults(t *testing.T) {
	cfg := node.DefaultConfig
	SetNodeConfig(newFlagContext(t), &cfg)
	if !reflect.DeepEqual(cfg, node.DefaultConfig) {
		t.Fatalf("unset flags changed the config:\nhave %+v\nwant %+v", cfg, node.DefaultConfig)
	}
}

func TestSetNodeConfigOverrides(t *testing.T) {
	program := common.Address{0xaa}
	ctx := newFlagContext(t,
		"--dev",
		"--program", program.String(),
		"--rent.lamports", "10",
		"--http.addr", "0.0.0.0",
		"--http.port", "9000",
		"--http.corsdomain", "a.example, b.example",
		"--faucet.max", "500",
		"--cache.handles", "4",
		"--verbosity", "debug",
		"--log.json",
		"--metrics",
		"--metrics.port", "7070",
	)
	cfg := node.DefaultConfig
	SetNodeConfig(ctx, &cfg)

	switch {
	case cfg.DataDir != "":
		t.Errorf("dev mode kept datadir %q", cfg.DataDir)
	case !cfg.Faucet.Enabled || cfg.Faucet.MaxLamports != 500:
		t.Errorf("faucet not configured: %+v", cfg.Faucet)
	case cfg.ProgramID != program:
		t.Errorf("program id %v, want %v", cfg.ProgramID, program)
	case cfg.Rent.LamportsPerByteYear != 10:
		t.Errorf("rent %+v", cfg.Rent)
	case cfg.HTTPEndpoint() != "0.0.0.0:9000":
		t.Errorf("http endpoint %q", cfg.HTTPEndpoint())
	case !reflect.DeepEqual(cfg.HTTPCors, []string{"a.example", "b.example"}):
		t.Errorf("cors %v", cfg.HTTPCors)
	case cfg.DBHandles != node.DefaultConfig.DBHandles:
		t.Errorf("unhealthy handle count accepted: %d", cfg.DBHandles)
	case cfg.Log.Level != "debug" || !cfg.Log.JSON:
		t.Errorf("log config %+v", cfg.Log)
	case !cfg.Metrics.Enabled || cfg.MetricsEndpoint() != "127.0.0.1:7070":
		t.Errorf("metrics config %+v", cfg.Metrics)
	}
}

func TestSetDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg := node.DefaultConfig
	SetNodeConfig(newFlagContext(t, "--datadir", dir), &cfg)
	if cfg.DataDir != dir {
		t.Fatalf("datadir %q, want %q", cfg.DataDir, dir)
	}
}

func TestMakeDatabaseHandles(t *testing.T) {
	for in, want := range map[int]int{0: node.DefaultConfig.DBHandles, 4: node.DefaultConfig.DBHandles, 512: 512} {
		if got := MakeDatabaseHandles(in); got != want {
			t.Errorf("MakeDatabaseHandles(%d) = %d, want %d", in, got, want)
		}
	}
}
