package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/ratingd/common"
	"github.com/tos-network/ratingd/crypto"
	"github.com/tos-network/ratingd/params"
	"github.com/tos-network/ratingd/rating"
	"github.com/tos-network/ratingd/ratingclient"
	"github.com/urfave/cli/v2"
)

var (
	titleFlag = &cli.StringFlag{
		Name:     "title",
		Usage:    "record title; part of the record address",
		Required: true,
	}
	ratingFlag = &cli.UintFlag{
		Name:  "rating",
		Usage: "score, 0-255",
	}
	descriptionFlag = &cli.StringFlag{
		Name:  "description",
		Usage: "free text description",
	}
	fundingFlag = &cli.UintFlag{
		Name:  "funding",
		Usage: "funding amount recorded with the rating",
	}
	recipientFlag = &cli.StringFlag{
		Name:  "recipient",
		Usage: "recipient label",
	}
	entryFlag = &cli.UintFlag{
		Name:  "entry",
		Usage: "entry number",
	}
	callerFlag = &cli.StringFlag{
		Name:  "caller",
		Usage: "base58 caller address (default: the --key address)",
	}
	pageFlag = &cli.IntFlag{
		Name:  "page",
		Usage: "page to fetch, from 1",
		Value: 1,
	}
	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "records per page",
		Value: 10,
	}
	filterFlag = &cli.StringFlag{
		Name:  "filter",
		Usage: `bexpr filter over record fields, e.g. 'title matches "^Ma"'`,
	}
	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "order records by address, title or rating",
	}
	lamportsFlag = &cli.Uint64Flag{
		Name:  "lamports",
		Usage: "amount to request",
		Value: params.LamportsPerTOS,
	}
)

var instructionFlags = []cli.Flag{titleFlag, ratingFlag, descriptionFlag, fundingFlag, recipientFlag, entryFlag}

var (
	commandDerive = &cli.Command{
		Name:   "derive",
		Usage:  "compute the record address of a caller and title offline",
		Flags:  []cli.Flag{titleFlag, callerFlag, keyfileFlag},
		Action: deriveAddress,
	}
	commandEncode = &cli.Command{
		Name:   "encode",
		Usage:  "print the encoded InitRating instruction and its sizes",
		Flags:  instructionFlags,
		Action: encodeInstruction,
	}
	commandCreate = &cli.Command{
		Name:   "create",
		Usage:  "create a rating record owned by the keyfile's address",
		Flags:  append([]cli.Flag{keyfileFlag, timeoutFlag}, instructionFlags...),
		Action: createRecord,
	}
	commandShow = &cli.Command{
		Name:      "show",
		Usage:     "show the record stored at an address",
		ArgsUsage: "<address>",
		Flags:     []cli.Flag{timeoutFlag},
		Action:    showRecord,
	}
	commandList = &cli.Command{
		Name:   "list",
		Usage:  "list records owned by the rating program",
		Flags:  []cli.Flag{pageFlag, limitFlag, filterFlag, sortFlag, timeoutFlag},
		Action: listRecords,
	}
	commandAirdrop = &cli.Command{
		Name:      "airdrop",
		Usage:     "request lamports from the node's development faucet",
		ArgsUsage: "[ <address> ]",
		Flags:     []cli.Flag{keyfileFlag, lamportsFlag, timeoutFlag},
		Action:    airdrop,
	}
)

func instructionFromFlags(ctx *cli.Context) (*rating.InitRating, error) {
	req := &rating.InitRating{
		Title:       ctx.String(titleFlag.Name),
		Description: ctx.String(descriptionFlag.Name),
		Recipient:   ctx.String(recipientFlag.Name),
	}
	score := ctx.Uint(ratingFlag.Name)
	if score > 255 {
		return nil, fmt.Errorf("rating %d out of range", score)
	}
	req.Rating = uint8(score)

	for _, f := range []struct {
		name string
		dst  *uint32
	}{{fundingFlag.Name, &req.Funding}, {entryFlag.Name, &req.Entry}} {
		v := uint64(ctx.Uint(f.name))
		if v > math.MaxUint32 {
			return nil, fmt.Errorf("--%s %d out of range", f.name, v)
		}
		*f.dst = uint32(v)
	}
	return req, nil
}

// resolveAddress picks the explicit address argument or flag, falling back
// to the keyfile's address.
func resolveAddress(ctx *cli.Context, explicit string) (common.Address, error) {
	if explicit != "" {
		return common.Base58ToAddress(explicit)
	}
	key, err := loadKey(ctx.String(keyfileFlag.Name))
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key), nil
}

func deriveAddress(ctx *cli.Context) error {
	program, err := programID(ctx)
	if err != nil {
		return err
	}
	caller, err := resolveAddress(ctx, ctx.String(callerFlag.Name))
	if err != nil {
		return err
	}
	addr, bump, err := rating.FindRecordAddress(caller, ctx.String(titleFlag.Name), program)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, &ratingclient.Derivation{Address: addr, Bump: bump})
	}
	fmt.Fprintln(ctx.App.Writer, "Address:", addr)
	fmt.Fprintln(ctx.App.Writer, "Bump:   ", bump)
	return nil
}

type outputEncode struct {
	Data       string `json:"data"`
	Allocation uint64 `json:"allocation"`
	Legacy     uint64 `json:"legacyAllocation"`
}

func encodeInstruction(ctx *cli.Context) error {
	req, err := instructionFromFlags(ctx)
	if err != nil {
		return err
	}
	out := outputEncode{
		Data:       hex.EncodeToString(rating.EncodeInitRating(req)),
		Allocation: rating.AllocationSize(req),
		Legacy:     rating.LegacyAllocationSize(req),
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, out)
	}
	fmt.Fprintln(ctx.App.Writer, "Data:      ", out.Data)
	fmt.Fprintln(ctx.App.Writer, "Allocation:", out.Allocation)
	return nil
}

func createRecord(ctx *cli.Context) error {
	program, err := programID(ctx)
	if err != nil {
		return err
	}
	req, err := instructionFromFlags(ctx)
	if err != nil {
		return err
	}
	key, err := loadKey(ctx.String(keyfileFlag.Name))
	if err != nil {
		return err
	}
	tx, err := ratingclient.NewInitRatingTx(key, program, req)
	if err != nil {
		return err
	}
	client, rctx, cancel, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	receipt, err := client.SendTransaction(rctx, tx)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		if err := printJSON(ctx, receipt); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(ctx.App.Writer, "Transaction:", receipt.TxHash)
		for _, line := range receipt.Logs {
			fmt.Fprintln(ctx.App.Writer, "  log:", line)
		}
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("transaction failed with code %d: %s", receipt.Code, receipt.Err)
	}
	return nil
}

func showRecord(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("need exactly one record address")
	}
	addr, err := common.Base58ToAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	client, rctx, cancel, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	rec, err := client.Record(rctx, addr)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, rec)
	}
	renderRecords(ctx.App.Writer, []*ratingclient.Record{rec})
	return nil
}

func listRecords(ctx *cli.Context) error {
	client, rctx, cancel, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	page, err := client.Records(rctx, ratingclient.RecordQuery{
		Page:   ctx.Int(pageFlag.Name),
		Limit:  ctx.Int(limitFlag.Name),
		Filter: ctx.String(filterFlag.Name),
		Sort:   ctx.String(sortFlag.Name),
	})
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, page)
	}
	renderRecords(ctx.App.Writer, page.Records)
	if page.More {
		fmt.Fprintf(ctx.App.Writer, "more records on page %d\n", page.Page+1)
	}
	return nil
}

func airdrop(ctx *cli.Context) error {
	addr, err := resolveAddress(ctx, ctx.Args().First())
	if err != nil {
		return err
	}
	client, rctx, cancel, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	balance, err := client.Airdrop(rctx, addr, ctx.Uint64(lamportsFlag.Name))
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, &ratingclient.AirdropReply{Address: addr, Balance: balance})
	}
	fmt.Fprintf(ctx.App.Writer, "Balance of %s: %d lamports\n", addr, balance)
	return nil
}

func renderRecords(w io.Writer, records []*ratingclient.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Address", "Title", "Rating", "Description", "Funding", "Recipient", "Entry"})
	table.SetAutoWrapText(false)
	for _, rec := range records {
		table.Append([]string{
			rec.Address.String(),
			rec.Title,
			strconv.Itoa(int(rec.Rating)),
			rec.Description,
			strconv.FormatUint(uint64(rec.Funding), 10),
			rec.Recipient,
			strconv.FormatUint(uint64(rec.Entry), 10),
		})
	}
	table.Render()
}
