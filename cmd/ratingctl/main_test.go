package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/runtime"
	"github.com/tos-network/ratingd/core/state"
	"github.com/tos-network/ratingd/core/system"
	"github.com/tos-network/ratingd/internal/ratingapi"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/rating"
	"github.com/tos-network/ratingd/tosdb/memorydb"
)

var testSeed = strings.Repeat("07", 32)

// runCtl runs ratingctl with args and returns what it printed.
func runCtl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(append([]string{"ratingctl"}, args...))
	return out.String(), err
}

func newKeyfile(t *testing.T) (string, common.Address) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.hex")
	out, err := runCtl(t, "--json", "key", "generate", "--seed", testSeed, path)
	require.NoError(t, err)

	var key outputKey
	require.NoError(t, json.Unmarshal([]byte(out), &key))
	return path, key.Address
}

func TestKeyGenerateInspect(t *testing.T) {
	path, addr := newKeyfile(t)

	out, err := runCtl(t, "--json", "key", "inspect", "--private", path)
	require.NoError(t, err)
	var key outputKey
	require.NoError(t, json.Unmarshal([]byte(out), &key))
	require.Equal(t, addr, key.Address)
	require.Equal(t, testSeed, key.PrivateKey)
	pub, err := hex.DecodeString(key.PublicKey)
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), pub)

	_, err = runCtl(t, "key", "generate", path)
	require.ErrorContains(t, err, "already exists")
}

func TestDeriveOffline(t *testing.T) {
	caller := common.Address{0x42}
	out, err := runCtl(t, "--json", "derive", "--caller", caller.String(), "--title", "Matrix")
	require.NoError(t, err)

	var have ratingapi.DeriveResult
	require.NoError(t, json.Unmarshal([]byte(out), &have))
	want, bump, err := rating.FindRecordAddress(caller, "Matrix", params.RatingProgramID)
	require.NoError(t, err)
	require.Equal(t, want, have.Address)
	require.Equal(t, bump, have.Bump)
}

func TestEncode(t *testing.T) {
	out, err := runCtl(t, "--json", "encode", "--title", "Matrix", "--rating", "9",
		"--description", "Great movie", "--funding", "100", "--recipient", "Neo!", "--entry", "1")
	require.NoError(t, err)

	var enc outputEncode
	require.NoError(t, json.Unmarshal([]byte(out), &enc))
	require.Equal(t, uint64(43), enc.Allocation)
	require.Equal(t, uint64(27), enc.Legacy)

	data, err := hex.DecodeString(enc.Data)
	require.NoError(t, err)
	ix, err := rating.DecodeInstruction(data)
	require.NoError(t, err)
	require.Equal(t, "Neo!", ix.(*rating.InitRating).Recipient)

	_, err = runCtl(t, "encode", "--title", "x", "--rating", "256")
	require.ErrorContains(t, err, "out of range")
}

func TestCreateShowList(t *testing.T) {
	reg := runtime.NewRegistry()
	require.NoError(t, reg.RegisterNative(system.New()))
	require.NoError(t, reg.Register(rating.NewProcessor(params.RatingProgramID)))
	exec := runtime.NewExecutor(reg, state.NewDatabase(memorydb.New(), 0), nil)
	faucet := ratingapi.DefaultFaucetConfig
	faucet.Enabled = true
	srv := httptest.NewServer(ratingapi.New(exec, ratingapi.Config{Faucet: faucet}))
	defer srv.Close()

	keyfile, caller := newKeyfile(t)

	out, err := runCtl(t, "--rpc", srv.URL, "airdrop", "--key", keyfile)
	require.NoError(t, err)
	require.Contains(t, out, "1000000000 lamports")

	out, err = runCtl(t, "--rpc", srv.URL, "create", "--key", keyfile, "--title", "Matrix",
		"--rating", "9", "--description", "Great movie", "--funding", "100", "--recipient", "Neo!", "--entry", "1")
	require.NoError(t, err)
	require.Contains(t, out, "log: Rating: Matrix")

	_, err = runCtl(t, "--rpc", srv.URL, "create", "--key", keyfile, "--title", "Matrix")
	require.ErrorContains(t, err, "code 7")

	addr, _, err := rating.FindRecordAddress(caller, "Matrix", params.RatingProgramID)
	require.NoError(t, err)
	out, err = runCtl(t, "--rpc", srv.URL, "--json", "show", addr.String())
	require.NoError(t, err)
	var rec ratingapi.RecordResult
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	require.Equal(t, "Great movie", rec.Description)
	require.Equal(t, uint32(100), rec.Funding)

	out, err = runCtl(t, "--rpc", srv.URL, "list", "--filter", `recipient == "Neo!"`)
	require.NoError(t, err)
	require.Contains(t, out, "TITLE")
	require.Contains(t, out, "Matrix")
	require.Contains(t, out, addr.String())

	_, err = runCtl(t, "--rpc", srv.URL, "create", "--key", keyfile, "--title", "Alien", "--rating", "8")
	require.NoError(t, err)
	out, err = runCtl(t, "--rpc", srv.URL, "list", "--sort", "title")
	require.NoError(t, err)
	require.Less(t, strings.Index(out, "Alien"), strings.Index(out, "Matrix"))

	_, err = runCtl(t, "--rpc", srv.URL, "list", "--sort", "entry")
	require.ErrorContains(t, err, "invalid sort")
}

func TestKeyGenerateMnemonic(t *testing.T) {
	dir := t.TempDir()
	out, err := runCtl(t, "--json", "key", "generate", "--mnemonic-generate", filepath.Join(dir, "a.hex"))
	require.NoError(t, err)
	var generated outputKey
	require.NoError(t, json.Unmarshal([]byte(out), &generated))
	require.Len(t, strings.Fields(generated.Mnemonic), 12)

	// Recovering from the phrase yields the same address.
	out, err = runCtl(t, "--json", "key", "generate", "--mnemonic", generated.Mnemonic, filepath.Join(dir, "b.hex"))
	require.NoError(t, err)
	var recovered outputKey
	require.NoError(t, json.Unmarshal([]byte(out), &recovered))
	require.Equal(t, generated.Address, recovered.Address)
	require.Empty(t, recovered.Mnemonic)

	_, err = runCtl(t, "key", "generate", "--mnemonic", testMnemonic, "--seed", testSeed, filepath.Join(dir, "c.hex"))
	require.ErrorContains(t, err, "can't use --seed")
}
