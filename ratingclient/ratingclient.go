// Package ratingclient provides a client for the rating node HTTP API.
package ratingclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/core/types"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/crypto/ed25519"
	"github.com/tos-network/ratingd/internal/ratingapi"
	"github.com/tos-network/ratingd/rating"
)

// NotFound is returned by lookups when the node has no such object.
var NotFound = errors.New("not found")

// Types shared with the server.
type (
	Account      = ratingapi.AccountResult
	Record       = ratingapi.RecordResult
	RecordPage   = ratingapi.RecordPage
	Derivation   = ratingapi.DeriveResult
	AirdropReply = ratingapi.AirdropResult
)

// Client defines typed wrappers for the rating node API.
type Client struct {
	base string
	hc   *http.Client
}

// Dial connects a client to the given URL.
func Dial(rawurl string) (*Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return NewClient(strings.TrimRight(rawurl, "/"), http.DefaultClient), nil
}

// NewClient creates a client that uses the given HTTP client.
func NewClient(base string, hc *http.Client) *Client {
	return &Client{base: base, hc: hc}
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	var rd io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(blob)
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NotFound
	}
	if resp.StatusCode/100 != 2 {
		var e ratingapi.ErrorResult
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = resp.Status
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// SendTransaction submits a signed transaction and returns its receipt. A
// failing program still yields a receipt; an error means the node rejected
// the transaction outright.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	var receipt types.Receipt
	args := &ratingapi.SendTxArgs{Tx: base64.StdEncoding.EncodeToString(types.EncodeTransaction(tx))}
	if err := c.call(ctx, http.MethodPost, "/v1/transactions", nil, args, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// TransactionReceipt returns the receipt of a transaction by transaction hash.
// Note that the receipt is not available for rejected transactions.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt types.Receipt
	if err := c.call(ctx, http.MethodGet, "/v1/transactions/"+txHash.Hex(), nil, nil, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Account returns the raw account at addr.
func (c *Client) Account(ctx context.Context, addr common.Address) (*Account, error) {
	var acc Account
	if err := c.call(ctx, http.MethodGet, "/v1/accounts/"+addr.String(), nil, nil, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Record returns the decoded rating record stored at addr.
func (c *Client) Record(ctx context.Context, addr common.Address) (*Record, error) {
	var rec Record
	if err := c.call(ctx, http.MethodGet, "/v1/records/"+addr.String(), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordQuery selects a page of records. Zero values leave the node's
// defaults in place.
type RecordQuery struct {
	Page   int    // numbered from 1
	Limit  int    // records per page
	Filter string // bexpr expression over record fields
	Sort   string // "address", "title" or "rating"
}

// Records returns one page of records.
func (c *Client) Records(ctx context.Context, query RecordQuery) (*RecordPage, error) {
	q := url.Values{}
	if query.Page > 0 {
		q.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Filter != "" {
		q.Set("filter", query.Filter)
	}
	if query.Sort != "" {
		q.Set("sort", query.Sort)
	}
	var out RecordPage
	if err := c.call(ctx, http.MethodGet, "/v1/records", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Derive asks the node for the record address of (caller, title).
func (c *Client) Derive(ctx context.Context, caller common.Address, title string) (*Derivation, error) {
	q := url.Values{"caller": {caller.String()}, "title": {title}}
	var out Derivation
	if err := c.call(ctx, http.MethodGet, "/v1/derive", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Airdrop requests lamports from the node's development faucet and returns
// the new balance.
func (c *Client) Airdrop(ctx context.Context, addr common.Address, lamports uint64) (uint64, error) {
	var out AirdropReply
	args := &ratingapi.AirdropArgs{Address: addr, Lamports: lamports}
	if err := c.call(ctx, http.MethodPost, "/v1/airdrop", nil, args, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

// NewInitRatingTx builds and signs the transaction creating key's record
// for req under program.
func NewInitRatingTx(key ed25519.PrivateKey, program common.Address, req *rating.InitRating) (*types.Transaction, error) {
	ix, err := rating.NewInitRatingInstruction(program, crypto.PubkeyToAddress(key), req)
	if err != nil {
		return nil, err
	}
	tx := types.NewTransaction(ix)
	if err := types.SignTx(tx, key); err != nil {
		return nil, err
	}
	return tx, nil
}
