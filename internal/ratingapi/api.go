// Package ratingapi serves the rating node over HTTP: transaction
// submission, receipts, raw accounts, decoded rating records and a
// development faucet.
package ratingapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-bexpr"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/log"
	"github.com/tos-network/ratingd/metrics"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/rating"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxBodySize      = 16 * 1024

	// requestIDHeader is echoed back, or filled with a fresh UUID.
	requestIDHeader = "X-Request-Id"
)

var (
	requestMeter = metrics.NewRegisteredMeter("api/requests", nil)
	errorMeter   = metrics.NewRegisteredMeter("api/errors", nil)
	requestTimer = metrics.NewRegisteredTimer("api/request/time", nil)
)

// Backend is the node state the API reads and drives. *runtime.Executor
// implements it.
type Backend interface {
	ApplyTransaction(tx *types.Transaction) (*types.Receipt, error)
	Account(addr common.Address) *types.Account
	Receipt(hash common.Hash) *types.Receipt
	IterateAccounts(owner *common.Address, start common.Address, fn func(common.Address, *types.Account) bool) error
	Airdrop(addr common.Address, lamports uint64) (uint64, error)
}

// Config selects the program whose records are served and the cross-origin
// and faucet policies.
type Config struct {
	ProgramID common.Address
	Cors      []string
	Faucet    FaucetConfig
}

// API is the HTTP handler set.
type API struct {
	backend Backend
	program common.Address
	faucet  *faucet
	router  *httprouter.Router
	handler http.Handler
	log     log.Logger
}

// New creates the API over backend.
func New(backend Backend, cfg Config) *API {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = params.RatingProgramID
	}
	api := &API{
		backend: backend,
		program: cfg.ProgramID,
		faucet:  newFaucet(cfg.Faucet),
		router:  httprouter.New(),
		log:     log.New("module", "api"),
	}
	api.router.POST("/v1/transactions", api.sendTransaction)
	api.router.GET("/v1/transactions/:hash", api.getReceipt)
	api.router.GET("/v1/accounts/:address", api.getAccount)
	api.router.GET("/v1/records", api.listRecords)
	api.router.GET("/v1/records/:address", api.getRecord)
	api.router.GET("/v1/derive", api.derive)
	api.router.POST("/v1/airdrop", api.airdrop)

	api.handler = api.router
	if len(cfg.Cors) > 0 {
		api.handler = cors.New(cors.Options{
			AllowedOrigins: cfg.Cors,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         600,
		}).Handler(api.router)
	}
	return api
}

// ServeHTTP implements http.Handler.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestMeter.Mark(1)

	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, id)
	api.handler.ServeHTTP(w, r)
	requestTimer.UpdateSince(start)
	api.log.Trace("Served request", "reqid", id, "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	errorMeter.Mark(1)
	writeJSON(w, status, &ErrorResult{Error: err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseAddress(raw string) (common.Address, error) {
	var addr common.Address
	err := addr.UnmarshalText([]byte(raw))
	return addr, err
}

func (api *API) sendTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var args SendTxArgs
	if err := readJSON(w, r, &args); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %v", err))
		return
	}
	blob, err := base64.StdEncoding.DecodeString(args.Tx)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid base64: %v", err))
		return
	}
	tx, err := types.DecodeTransaction(blob)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt, err := api.backend.ApplyTransaction(tx)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (api *API) getReceipt(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	var hash common.Hash
	if err := hash.UnmarshalText([]byte(ps.ByName("hash"))); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	receipt := api.backend.Receipt(hash)
	if receipt == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("receipt %s not found", hash))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (api *API) getAccount(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := parseAddress(ps.ByName("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	acc := api.backend.Account(addr)
	if acc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("account %s not found", addr))
		return
	}
	writeJSON(w, http.StatusOK, newAccountResult(addr, acc))
}

func (api *API) getRecord(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := parseAddress(ps.ByName("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	acc := api.backend.Account(addr)
	if acc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("record %s not found", addr))
		return
	}
	if !acc.IsOwnedBy(api.program) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("account %s is not owned by %s", addr, api.program))
		return
	}
	rec, err := rating.DeserializeRecord(acc.Data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecordResult(addr, rec))
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// listRecords pages through program owned slots. Slots that do not decode
// are skipped. The filter, when given, is a bexpr expression over
// RecordResult fields such as `rating == 9` or `title matches "^Matrix"`.
// Records come in address order unless sort names another key.
func (api *API) listRecords(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page-1 > (math.MaxInt-limit)/limit {
		writeError(w, http.StatusBadRequest, fmt.Errorf("page %d out of range", page))
		return
	}
	less, err := recordOrder(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var eval *bexpr.Evaluator
	if expr := r.URL.Query().Get("filter"); expr != "" {
		if eval, err = bexpr.CreateEvaluator(expr); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid filter: %v", err))
			return
		}
	}
	var (
		skip    = (page - 1) * limit
		matched []*RecordResult
		evalErr error
	)
	err = api.backend.IterateAccounts(&api.program, common.Address{}, func(addr common.Address, acc *types.Account) bool {
		rec, err := rating.DeserializeRecord(acc.Data)
		if err != nil || !rec.IsInitialized() {
			return true
		}
		view := newRecordResult(addr, rec)
		if eval != nil {
			ok, err := eval.Evaluate(view)
			if err != nil {
				evalErr = err
				return false
			}
			if !ok {
				return true
			}
		}
		matched = append(matched, view)
		// Address order needs nothing past the first record of the next page.
		return less != nil || len(matched) <= skip+limit
	})
	if err == nil {
		err = evalErr
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	}
	out := &RecordPage{Page: page, Limit: limit, Records: []*RecordResult{}}
	if skip < len(matched) {
		end := skip + limit
		if end < len(matched) {
			out.More = true
		} else {
			end = len(matched)
		}
		out.Records = append(out.Records, matched[skip:end]...)
	}
	writeJSON(w, http.StatusOK, out)
}

// recordOrder maps a sort key to its ordering. The empty key and "address"
// keep iteration order and return nil. Ratings sort highest first.
func recordOrder(key string) (func(a, b *RecordResult) bool, error) {
	switch key {
	case "", "address":
		return nil, nil
	case "title":
		return func(a, b *RecordResult) bool { return a.Title < b.Title }, nil
	case "rating":
		return func(a, b *RecordResult) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.Title < b.Title
		}, nil
	}
	return nil, fmt.Errorf("invalid sort %q", key)
}

func (api *API) derive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	caller, err := parseAddress(q.Get("caller"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	addr, bump, err := rating.FindRecordAddress(caller, q.Get("title"), api.program)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, &DeriveResult{Address: addr, Bump: bump})
}

func (api *API) airdrop(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var args AirdropArgs
	if err := readJSON(w, r, &args); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %v", err))
		return
	}
	if err := api.faucet.admit(args.Lamports); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, errFaucetDisabled):
			status = http.StatusForbidden
		case errors.Is(err, errFaucetLimited):
			status = http.StatusTooManyRequests
		}
		writeError(w, status, err)
		return
	}
	balance, err := api.backend.Airdrop(args.Address, args.Lamports)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	api.log.Info("Airdropped lamports", "address", args.Address, "lamports", args.Lamports, "balance", balance)
	writeJSON(w, http.StatusOK, &AirdropResult{Address: args.Address, Balance: balance})
}
