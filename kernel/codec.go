// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"errors"
	"math"
	"sort"

	"github.com/holiman/uint256"
	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

// CodecVersion is the wire format version registered with Codec.
// Snapshot callers outside this package marshal/unmarshal against it.
const CodecVersion = 0

const codecVersion = CodecVersion

// Codec is the wire/persistence codec for BridgeState snapshots. A
// snapshot must load back byte-identical to what was saved, so every
// map in HashState is flattened to a key-ascending slice before it
// ever reaches the codec: linearcodec walks structs, slices and fixed
// arrays, not Go maps.
var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&StateSnapshot{}),
		lc.RegisterType(&SignatureRequestBatch{}),
		lc.RegisterType(&NockBlockIngest{}),
		lc.RegisterType(&BaseBlocksIngest{}),
		Codec.RegisterCodec(codecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}

// wireAmount carries a *uint256.Int across the wire as big-endian
// bytes; a nil amount round-trips as the zero value.
type wireAmount [32]byte

func amountToWire(v *uint256.Int) wireAmount {
	if v == nil {
		return wireAmount{}
	}
	return wireAmount(v.Bytes32())
}

func wireToAmount(w wireAmount) *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

// wireDeposit is Deposit flattened for the wire: Dest's optionality is
// carried by HasDest rather than a pointer.
type wireDeposit struct {
	TxId         TxId
	Name         Name
	HasDest      bool
	Dest         EvmAddr
	AmountToMint wireAmount
	Fee          wireAmount
}

func depositToWire(d Deposit) wireDeposit {
	w := wireDeposit{
		TxId:         d.TxId,
		Name:         d.Name,
		AmountToMint: amountToWire(d.AmountToMint),
		Fee:          amountToWire(d.Fee),
	}
	if d.Dest != nil {
		w.HasDest = true
		w.Dest = *d.Dest
	}
	return w
}

func wireToDeposit(w wireDeposit) Deposit {
	d := Deposit{
		TxId:         w.TxId,
		Name:         w.Name,
		AmountToMint: wireToAmount(w.AmountToMint),
		Fee:          wireToAmount(w.Fee),
	}
	if w.HasDest {
		dest := w.Dest
		d.Dest = &dest
	}
	return d
}

type wireWithdrawalSettlement struct {
	EventId []uint64
	Name    Name
}

type wireNockBlock struct {
	Height                uint64
	BlockId               NockHash
	Prev                  NockHash
	Deposits              []wireDeposit
	WithdrawalSettlements []wireWithdrawalSettlement
}

func nockBlockToWire(b NockBlock) wireNockBlock {
	w := wireNockBlock{Height: b.Height, BlockId: b.BlockId, Prev: b.Prev}

	names := make([]Name, 0, len(b.Deposits))
	for n := range b.Deposits {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	for _, n := range names {
		w.Deposits = append(w.Deposits, depositToWire(b.Deposits[n]))
	}

	wsNames := make([]Name, 0, len(b.WithdrawalSettlements))
	for n := range b.WithdrawalSettlements {
		wsNames = append(wsNames, n)
	}
	sort.Slice(wsNames, func(i, j int) bool { return wsNames[i].Less(wsNames[j]) })
	for _, n := range wsNames {
		ws := b.WithdrawalSettlements[n]
		ids := make([]uint64, len(ws.EventId))
		for i, f := range ws.EventId {
			ids[i] = uint64(f)
		}
		w.WithdrawalSettlements = append(w.WithdrawalSettlements, wireWithdrawalSettlement{EventId: ids, Name: ws.Name})
	}
	return w
}

func wireToNockBlock(w wireNockBlock) NockBlock {
	nb := NockBlock{
		Height:                w.Height,
		BlockId:               w.BlockId,
		Prev:                  w.Prev,
		Deposits:              map[Name]Deposit{},
		WithdrawalSettlements: map[Name]WithdrawalSettlement{},
	}
	for _, wd := range w.Deposits {
		d := wireToDeposit(wd)
		nb.Deposits[d.Name] = d
	}
	for _, wws := range w.WithdrawalSettlements {
		chunks := make(BasedList, len(wws.EventId))
		for i, v := range wws.EventId {
			chunks[i] = Felt(v)
		}
		nb.WithdrawalSettlements[wws.Name] = WithdrawalSettlement{EventId: BaseEventId(chunks), Name: wws.Name}
	}
	return nb
}

type wireBaseBlockEntry struct {
	Height uint64
	Bid    []uint64
	Parent []uint64
}

type wireWithdrawal struct {
	EventId []uint64
	Burner  EvmAddr
	Amount  wireAmount
}

type wireDepositSettlement struct {
	EventId         []uint64
	CounterpartName Name
	AsOf            NockHash
	NockHeight      uint64
	Dest            EvmAddr
	SettledAmount   wireAmount
	Nonce           uint64
}

type wireBaseBatch struct {
	FirstHeight        uint64
	LastHeight         uint64
	Prev               BaseHash
	Blocks             []wireBaseBlockEntry
	Withdrawals        []wireWithdrawal
	DepositSettlements []wireDepositSettlement
}

func basedToUints(l BasedList) []uint64 {
	out := make([]uint64, len(l))
	for i, f := range l {
		out[i] = uint64(f)
	}
	return out
}

func uintsToBased(u []uint64) BasedList {
	out := make(BasedList, len(u))
	for i, v := range u {
		out[i] = Felt(v)
	}
	return out
}

func baseBatchToWire(b BaseBlockBatch) wireBaseBatch {
	w := wireBaseBatch{FirstHeight: b.FirstHeight, LastHeight: b.LastHeight, Prev: b.Prev}

	heights := make([]uint64, 0, len(b.Blocks))
	for h := range b.Blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	for _, h := range heights {
		blk := b.Blocks[h]
		w.Blocks = append(w.Blocks, wireBaseBlockEntry{Height: h, Bid: basedToUints(BasedList(blk.Bid)), Parent: basedToUints(BasedList(blk.Parent))})
	}

	wKeys := make([]BaseEventIdKey, 0, len(b.Withdrawals))
	for k := range b.Withdrawals {
		wKeys = append(wKeys, k)
	}
	sort.Slice(wKeys, func(i, j int) bool { return wKeys[i] < wKeys[j] })
	for _, k := range wKeys {
		wd := b.Withdrawals[k]
		w.Withdrawals = append(w.Withdrawals, wireWithdrawal{EventId: basedToUints(BasedList(wd.EventId)), Burner: wd.Burner, Amount: amountToWire(wd.Amount)})
	}

	sKeys := make([]BaseEventIdKey, 0, len(b.DepositSettlements))
	for k := range b.DepositSettlements {
		sKeys = append(sKeys, k)
	}
	sort.Slice(sKeys, func(i, j int) bool { return sKeys[i] < sKeys[j] })
	for _, k := range sKeys {
		s := b.DepositSettlements[k]
		w.DepositSettlements = append(w.DepositSettlements, wireDepositSettlement{
			EventId:         basedToUints(BasedList(s.EventId)),
			CounterpartName: s.CounterpartName,
			AsOf:            s.AsOf,
			NockHeight:      s.NockHeight,
			Dest:            s.Dest,
			SettledAmount:   amountToWire(s.SettledAmount),
			Nonce:           s.Nonce,
		})
	}
	return w
}

func wireToBaseBatch(w wireBaseBatch) BaseBlockBatch {
	b := BaseBlockBatch{
		FirstHeight:        w.FirstHeight,
		LastHeight:         w.LastHeight,
		Prev:               w.Prev,
		Blocks:             map[uint64]BaseBlock{},
		Withdrawals:        map[BaseEventIdKey]Withdrawal{},
		DepositSettlements: map[BaseEventIdKey]DepositSettlement{},
	}
	for _, be := range w.Blocks {
		b.Blocks[be.Height] = BaseBlock{Bid: BaseBlockId(uintsToBased(be.Bid)), Parent: BaseBlockId(uintsToBased(be.Parent))}
	}
	for _, wd := range w.Withdrawals {
		eid := BaseEventId(uintsToBased(wd.EventId))
		b.Withdrawals[eid.Key()] = Withdrawal{EventId: eid, Burner: wd.Burner, Amount: wireToAmount(wd.Amount)}
	}
	for _, ws := range w.DepositSettlements {
		eid := BaseEventId(uintsToBased(ws.EventId))
		b.DepositSettlements[eid.Key()] = DepositSettlement{
			EventId:         eid,
			CounterpartName: ws.CounterpartName,
			AsOf:            ws.AsOf,
			NockHeight:      ws.NockHeight,
			Dest:            ws.Dest,
			SettledAmount:   wireToAmount(ws.SettledAmount),
			Nonce:           ws.Nonce,
		}
	}
	return b
}

// wireDepositEntry and wireWithdrawalLedgerEntry carry one Ledger[V]
// entry across the wire as its raw
// compound key, not its decomposed (block, name) parts: the ledger
// only ever looks keys up by the same composed string, so recomposing
// it loses nothing and sidesteps needing a reverse parse for every key
// shape in the system.
type wireDepositEntry struct {
	Key     string
	Deposit wireDeposit
}

type wireWithdrawalLedgerEntry struct {
	Key        string
	Withdrawal wireWithdrawal
}

func ledgerDepositsToWire(l *Ledger[Deposit]) []wireDepositEntry {
	keys := l.Keys()
	out := make([]wireDepositEntry, 0, len(keys))
	for _, k := range keys {
		v, _ := l.Get(k)
		out = append(out, wireDepositEntry{Key: k, Deposit: depositToWire(v)})
	}
	return out
}

func wireToLedgerDeposits(entries []wireDepositEntry) *Ledger[Deposit] {
	l := NewLedger[Deposit]()
	for _, e := range entries {
		l.Put(e.Key, wireToDeposit(e.Deposit))
	}
	return l
}

func ledgerWithdrawalsToWire(l *Ledger[Withdrawal]) []wireWithdrawalLedgerEntry {
	keys := l.Keys()
	out := make([]wireWithdrawalLedgerEntry, 0, len(keys))
	for _, k := range keys {
		v, _ := l.Get(k)
		out = append(out, wireWithdrawalLedgerEntry{Key: k, Withdrawal: wireWithdrawal{EventId: basedToUints(BasedList(v.EventId)), Burner: v.Burner, Amount: amountToWire(v.Amount)}})
	}
	return out
}

func wireToLedgerWithdrawals(entries []wireWithdrawalLedgerEntry) *Ledger[Withdrawal] {
	l := NewLedger[Withdrawal]()
	for _, e := range entries {
		l.Put(e.Key, Withdrawal{EventId: BaseEventId(uintsToBased(e.Withdrawal.EventId)), Burner: e.Withdrawal.Burner, Amount: wireToAmount(e.Withdrawal.Amount)})
	}
	return l
}

// StateSnapshot is the flattened, wire-safe image of a BridgeState.
// Save/Load go through this type so persistence round-trips bytes,
// not Go map iteration order.
type StateSnapshot struct {
	Config         NodeConfig
	Constants      BridgeConstants
	NextNonce      uint64
	BridgeLockRoot NockHash

	HasStop bool
	Stop    StopInfo

	LastNockBlock  NockHash
	NockNextHeight uint64
	LastBaseBlocks BaseHash
	BaseNextHeight uint64

	HasNockHold bool
	NockHold    NockHold
	HasBaseHold bool
	BaseHold    BaseHoldTarget

	NockBlocks []wireNockBlock
	BaseBlocks []wireBaseBatch

	UnsettledDeposits             []wireDepositEntry
	UnconfirmedSettledDeposits    []wireDepositEntry
	UnsettledWithdrawals          []wireWithdrawalLedgerEntry
	UnconfirmedSettledWithdrawals []wireWithdrawalLedgerEntry
}

// Snapshot flattens a BridgeState into its wire form.
func Snapshot(s *BridgeState) *StateSnapshot {
	snap := &StateSnapshot{
		Config:         s.Config,
		Constants:      s.Constants,
		NextNonce:      s.NextNonce,
		BridgeLockRoot: s.BridgeLockRoot,
		LastNockBlock:  s.HashState.LastNockBlock,
		NockNextHeight: s.HashState.NockNextHeight,
		LastBaseBlocks: s.HashState.LastBaseBlocks,
		BaseNextHeight: s.HashState.BaseNextHeight,

		UnsettledDeposits:             ledgerDepositsToWire(s.HashState.UnsettledDeposits),
		UnconfirmedSettledDeposits:    ledgerDepositsToWire(s.HashState.UnconfirmedSettledDeposits),
		UnsettledWithdrawals:          ledgerWithdrawalsToWire(s.HashState.UnsettledWithdrawals),
		UnconfirmedSettledWithdrawals: ledgerWithdrawalsToWire(s.HashState.UnconfirmedSettledWithdrawals),
	}

	if s.Stop != nil {
		snap.HasStop = true
		snap.Stop = *s.Stop
	}
	if s.HashState.NockHold != nil {
		snap.HasNockHold = true
		snap.NockHold = *s.HashState.NockHold
	}
	if s.HashState.BaseHold != nil {
		snap.HasBaseHold = true
		snap.BaseHold = *s.HashState.BaseHold
	}

	nockHashes := make([]NockHash, 0, len(s.HashState.NockHashchain))
	for h := range s.HashState.NockHashchain {
		nockHashes = append(nockHashes, h)
	}
	sort.Slice(nockHashes, func(i, j int) bool { return Digest(nockHashes[i]).String() < Digest(nockHashes[j]).String() })
	for _, h := range nockHashes {
		snap.NockBlocks = append(snap.NockBlocks, nockBlockToWire(s.HashState.NockHashchain[h]))
	}

	baseHashes := make([]BaseHash, 0, len(s.HashState.BaseHashchain))
	for h := range s.HashState.BaseHashchain {
		baseHashes = append(baseHashes, h)
	}
	sort.Slice(baseHashes, func(i, j int) bool { return Digest(baseHashes[i]).String() < Digest(baseHashes[j]).String() })
	for _, h := range baseHashes {
		snap.BaseBlocks = append(snap.BaseBlocks, baseBatchToWire(s.HashState.BaseHashchain[h]))
	}

	return snap
}

// Restore rebuilds a BridgeState from its flattened snapshot.
func Restore(snap *StateSnapshot) *BridgeState {
	hs := NewHashState()
	hs.LastNockBlock = snap.LastNockBlock
	hs.NockNextHeight = snap.NockNextHeight
	hs.LastBaseBlocks = snap.LastBaseBlocks
	hs.BaseNextHeight = snap.BaseNextHeight
	hs.UnsettledDeposits = wireToLedgerDeposits(snap.UnsettledDeposits)
	hs.UnconfirmedSettledDeposits = wireToLedgerDeposits(snap.UnconfirmedSettledDeposits)
	hs.UnsettledWithdrawals = wireToLedgerWithdrawals(snap.UnsettledWithdrawals)
	hs.UnconfirmedSettledWithdrawals = wireToLedgerWithdrawals(snap.UnconfirmedSettledWithdrawals)

	if snap.HasNockHold {
		nh := snap.NockHold
		hs.NockHold = &nh
	}
	if snap.HasBaseHold {
		bh := snap.BaseHold
		hs.BaseHold = &bh
	}

	for _, wnb := range snap.NockBlocks {
		nb := wireToNockBlock(wnb)
		hs.NockHashchain[nb.BlockId] = nb
	}
	for _, wbb := range snap.BaseBlocks {
		bb := wireToBaseBatch(wbb)
		hs.BaseHashchain[hashBaseBlockBatch(bb)] = bb
	}

	s := &BridgeState{
		Config:         snap.Config,
		Constants:      snap.Constants,
		HashState:      hs,
		NextNonce:      snap.NextNonce,
		BridgeLockRoot: snap.BridgeLockRoot,
	}
	if snap.HasStop {
		info := snap.Stop
		s.Stop = &info
	}
	return s
}

// SignatureRequestBatch is the wire shape of a ProposeBaseCallEffect,
// used when persisting or replaying a batch of emitted requests.
type SignatureRequestBatch struct {
	Requests []wireSignatureRequest
}

type wireSignatureRequest struct {
	TxId        TxId
	Name        Name
	Recipient   EvmAddr
	Amount      wireAmount
	BlockHeight uint64
	AsOf        NockHash
	Nonce       uint64
}

// EncodeSignatureRequests flattens a slice of SignatureRequest for the
// wire.
func EncodeSignatureRequests(reqs []SignatureRequest) *SignatureRequestBatch {
	batch := &SignatureRequestBatch{Requests: make([]wireSignatureRequest, 0, len(reqs))}
	for _, r := range reqs {
		batch.Requests = append(batch.Requests, wireSignatureRequest{
			TxId:        r.TxId,
			Name:        r.Name,
			Recipient:   r.Recipient,
			Amount:      amountToWire(r.Amount),
			BlockHeight: r.BlockHeight,
			AsOf:        r.AsOf,
			Nonce:       r.Nonce,
		})
	}
	return batch
}

// DecodeSignatureRequests restores a SignatureRequestBatch's requests.
func DecodeSignatureRequests(batch *SignatureRequestBatch) []SignatureRequest {
	out := make([]SignatureRequest, 0, len(batch.Requests))
	for _, w := range batch.Requests {
		out = append(out, SignatureRequest{
			TxId:        w.TxId,
			Name:        w.Name,
			Recipient:   w.Recipient,
			Amount:      wireToAmount(w.Amount),
			BlockHeight: w.BlockHeight,
			AsOf:        w.AsOf,
			Nonce:       w.Nonce,
		})
	}
	return out
}

// --- Driver-facing ingestion envelopes ---
//
// These carry the raw, not-yet-verified block/tx data the external
// driver submits as a NockchainBlock or BaseBlocks cause. They are
// wire-flattened the same way StateSnapshot is, since RawTx's
// NoteData is itself a map.

type wireNoteDataEntry struct {
	Key   string
	Value []byte
}

type wireNoteOutput struct {
	Name     Name
	Assets   uint64
	NoteData []wireNoteDataEntry
}

type wireSpentNote struct {
	Name Name
}

type wireRawTx struct {
	TxId       TxId
	Version    BlockVersion
	SpentNotes []wireSpentNote
	Outputs    []wireNoteOutput
}

func rawTxToWire(id TxId, tx RawTx) wireRawTx {
	w := wireRawTx{TxId: id, Version: tx.Version}
	for _, sn := range tx.SpentNotes {
		w.SpentNotes = append(w.SpentNotes, wireSpentNote{Name: sn.Name})
	}
	for _, out := range tx.Outputs {
		wo := wireNoteOutput{Name: out.Name, Assets: out.Assets}
		keys := make([]string, 0, len(out.NoteData))
		for k := range out.NoteData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			wo.NoteData = append(wo.NoteData, wireNoteDataEntry{Key: k, Value: out.NoteData[k]})
		}
		w.Outputs = append(w.Outputs, wo)
	}
	return w
}

func wireToRawTx(w wireRawTx) (TxId, RawTx) {
	tx := RawTx{Version: w.Version}
	for _, sn := range w.SpentNotes {
		tx.SpentNotes = append(tx.SpentNotes, SpentNote{Name: sn.Name})
	}
	for _, wo := range w.Outputs {
		data := make(map[string][]byte, len(wo.NoteData))
		for _, e := range wo.NoteData {
			data[e.Key] = e.Value
		}
		tx.Outputs = append(tx.Outputs, NoteOutput{Name: wo.Name, Assets: wo.Assets, NoteData: data})
	}
	return w.TxId, tx
}

// NockBlockIngest is the wire form of one NockchainBlock cause: a
// block header plus the full bodies of the txs it claims to carry.
type NockBlockIngest struct {
	Version            BlockVersion
	Height             uint64
	Prev               NockHash
	TxIds              []TxId
	IsGenesisForBridge bool
	Txs                []wireRawTx
}

// EncodeNockBlockIngest flattens a RawNockBlock and its tx bodies.
func EncodeNockBlockIngest(block RawNockBlock, txs map[TxId]RawTx) *NockBlockIngest {
	ing := &NockBlockIngest{
		Version:            block.Version,
		Height:             block.Height,
		Prev:               block.Prev,
		TxIds:              block.TxIds,
		IsGenesisForBridge: block.IsGenesisForBridge,
	}
	for _, id := range block.TxIds {
		if tx, ok := txs[id]; ok {
			ing.Txs = append(ing.Txs, rawTxToWire(id, tx))
		}
	}
	return ing
}

// DecodeNockBlockIngest restores a RawNockBlock and its tx bodies.
func DecodeNockBlockIngest(ing *NockBlockIngest) (RawNockBlock, map[TxId]RawTx) {
	block := RawNockBlock{
		Version:            ing.Version,
		Height:             ing.Height,
		Prev:               ing.Prev,
		TxIds:              ing.TxIds,
		IsGenesisForBridge: ing.IsGenesisForBridge,
	}
	txs := make(map[TxId]RawTx, len(ing.Txs))
	for _, w := range ing.Txs {
		id, tx := wireToRawTx(w)
		txs[id] = tx
	}
	return block, txs
}

type wireBaseEvent struct {
	Kind          BaseEventKind
	EventId       []uint64
	HasSettlement bool
	Settlement    wireDepositSettlement
	HasWithdrawal bool
	Withdrawal    wireWithdrawal
}

type wireRawBaseBlock struct {
	Height    uint64
	Bid       []uint64
	ParentBid []uint64
	Events    []wireBaseEvent
}

// BaseBlocksIngest is the wire form of one BaseBlocks cause: the raw,
// fixed-height batch the driver submits for settlement matching.
type BaseBlocksIngest struct {
	Blocks []wireRawBaseBlock
}

// EncodeBaseBlocksIngest flattens a RawBaseBlock batch.
func EncodeBaseBlocksIngest(blocks []RawBaseBlock) *BaseBlocksIngest {
	ing := &BaseBlocksIngest{}
	for _, b := range blocks {
		wb := wireRawBaseBlock{Height: b.Height, Bid: basedToUints(BasedList(b.Bid)), ParentBid: basedToUints(BasedList(b.ParentBid))}
		for _, ev := range b.Events {
			we := wireBaseEvent{Kind: ev.Kind, EventId: basedToUints(BasedList(ev.EventId))}
			if ev.Settlement != nil {
				we.HasSettlement = true
				s := *ev.Settlement
				we.Settlement = wireDepositSettlement{
					EventId:         basedToUints(BasedList(s.EventId)),
					CounterpartName: s.CounterpartName,
					AsOf:            s.AsOf,
					NockHeight:      s.NockHeight,
					Dest:            s.Dest,
					SettledAmount:   amountToWire(s.SettledAmount),
					Nonce:           s.Nonce,
				}
			}
			if ev.Withdrawal != nil {
				we.HasWithdrawal = true
				w := *ev.Withdrawal
				we.Withdrawal = wireWithdrawal{EventId: basedToUints(BasedList(w.EventId)), Burner: w.Burner, Amount: amountToWire(w.Amount)}
			}
			wb.Events = append(wb.Events, we)
		}
		ing.Blocks = append(ing.Blocks, wb)
	}
	return ing
}

// DecodeBaseBlocksIngest restores a RawBaseBlock batch.
func DecodeBaseBlocksIngest(ing *BaseBlocksIngest) []RawBaseBlock {
	out := make([]RawBaseBlock, 0, len(ing.Blocks))
	for _, wb := range ing.Blocks {
		b := RawBaseBlock{Height: wb.Height, Bid: BaseBlockId(uintsToBased(wb.Bid)), ParentBid: BaseBlockId(uintsToBased(wb.ParentBid))}
		for _, we := range wb.Events {
			ev := BaseEvent{Kind: we.Kind, EventId: BaseEventId(uintsToBased(we.EventId))}
			if we.HasSettlement {
				s := we.Settlement
				ev.Settlement = &DepositSettlement{
					EventId:         BaseEventId(uintsToBased(s.EventId)),
					CounterpartName: s.CounterpartName,
					AsOf:            s.AsOf,
					NockHeight:      s.NockHeight,
					Dest:            s.Dest,
					SettledAmount:   wireToAmount(s.SettledAmount),
					Nonce:           s.Nonce,
				}
			}
			if we.HasWithdrawal {
				w := we.Withdrawal
				ev.Withdrawal = &Withdrawal{EventId: BaseEventId(uintsToBased(w.EventId)), Burner: w.Burner, Amount: wireToAmount(w.Amount)}
			}
			b.Events = append(b.Events, ev)
		}
		out = append(out, b)
	}
	return out
}
