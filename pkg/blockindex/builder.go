package blockindex

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"chainstats/internal/chainerr"
	"chainstats/pkg/bytesource"
)

// recordKeyPrefix is the single-byte prefix Bitcoin Core uses for block
// index entries in blocks/index ('b', per CDiskBlockIndex's key in
// src/txdb.cpp).
const recordKeyPrefix = 'b'

// Build opens the node's block-index LevelDB database at indexDir and
// decodes, in order, the record for every hash in activeChain (the
// resolved active-chain hash list — see hashlist.Read). The database is
// opened read-only with compression disabled, matching how every other
// external reader of Bitcoin Core's LevelDB stores avoids corrupting them
// by accident.
func Build(indexDir string, activeChain []chainhash.Hash) ([]Record, error) {
	db, err := leveldb.OpenFile(indexDir, &opt.Options{
		Compression: opt.NoCompression,
		ReadOnly:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("blockindex: opening %s: %w", indexDir, err)
	}
	defer db.Close()

	records := make([]Record, len(activeChain))
	for height, hash := range activeChain {
		rec, err := readRecord(db, hash)
		if err != nil {
			return nil, chainerr.Wrap(chainerr.IndexBroken, height, err)
		}
		if rec.Height != height {
			return nil, chainerr.Wrap(chainerr.IndexBroken, height,
				fmt.Errorf("index entry for %s claims height %d, expected %d", hash, rec.Height, height))
		}
		if rec.Failed() {
			return nil, chainerr.Wrap(chainerr.IndexBroken, height,
				fmt.Errorf("block %s is marked failed (status 0x%x)", hash, rec.Status))
		}
		records[height] = rec
	}

	if err := verifyChainLinkage(records); err != nil {
		return nil, err
	}
	return records, nil
}

func readRecord(db *leveldb.DB, hash chainhash.Hash) (Record, error) {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = recordKeyPrefix
	copy(key[1:], hash[:])

	value, err := db.Get(key, nil)
	if err != nil {
		return Record{}, fmt.Errorf("reading index entry for %s: %w", hash, err)
	}

	r := bytesource.New(bytes.NewReader(value))
	rec := Record{Hash: hash}

	version, err := r.ReadAltVarint()
	if err != nil {
		return Record{}, fmt.Errorf("client version: %w", err)
	}
	rec.ClientVersion = version

	height, err := r.ReadAltVarint()
	if err != nil {
		return Record{}, fmt.Errorf("height: %w", err)
	}
	rec.Height = int(height)

	status, err := r.ReadAltVarint()
	if err != nil {
		return Record{}, fmt.Errorf("status: %w", err)
	}
	rec.Status = status

	ntx, err := r.ReadAltVarint()
	if err != nil {
		return Record{}, fmt.Errorf("ntx: %w", err)
	}
	rec.NumTx = ntx

	if status&(HaveData|HaveUndo) != 0 {
		fileNo, err := r.ReadAltVarint()
		if err != nil {
			return Record{}, fmt.Errorf("file number: %w", err)
		}
		rec.FileNo = uint32(fileNo)
	}
	if status&HaveData != 0 {
		dataPos, err := r.ReadAltVarint()
		if err != nil {
			return Record{}, fmt.Errorf("data position: %w", err)
		}
		rec.DataPos = uint32(dataPos)
	}
	if status&HaveUndo != 0 {
		undoPos, err := r.ReadAltVarint()
		if err != nil {
			return Record{}, fmt.Errorf("undo position: %w", err)
		}
		rec.UndoPos = uint32(undoPos)
	}

	blockVerBytes, err := r.Read(4)
	if err != nil {
		return Record{}, fmt.Errorf("block version: %w", err)
	}
	rec.BlockVersion = int32(binary.LittleEndian.Uint32(blockVerBytes))

	prevBytes, err := r.Read(chainhash.HashSize)
	if err != nil {
		return Record{}, fmt.Errorf("prev block hash: %w", err)
	}
	copy(rec.PrevBlockHash[:], prevBytes)

	merkleBytes, err := r.Read(chainhash.HashSize)
	if err != nil {
		return Record{}, fmt.Errorf("merkle root: %w", err)
	}
	copy(rec.MerkleRoot[:], merkleBytes)

	tsBytes, err := r.Read(4)
	if err != nil {
		return Record{}, fmt.Errorf("timestamp: %w", err)
	}
	rec.Timestamp = binary.LittleEndian.Uint32(tsBytes)

	bitsBytes, err := r.Read(4)
	if err != nil {
		return Record{}, fmt.Errorf("bits: %w", err)
	}
	rec.Bits = binary.LittleEndian.Uint32(bitsBytes)

	nonceBytes, err := r.Read(4)
	if err != nil {
		return Record{}, fmt.Errorf("nonce: %w", err)
	}
	rec.Nonce = binary.LittleEndian.Uint32(nonceBytes)

	return rec, nil
}

// verifyChainLinkage checks that every record's previous-block-hash field
// actually points at the prior record, catching a corrupted or
// out-of-order hash list before the driver starts trusting file offsets
// derived from it.
func verifyChainLinkage(records []Record) error {
	expected := chainhash.Hash{}
	for height, rec := range records {
		if rec.PrevBlockHash != expected {
			return chainerr.Wrap(chainerr.IndexBroken, height,
				fmt.Errorf("block %s has previous hash %s, expected %s", rec.Hash, rec.PrevBlockHash, expected))
		}
		expected = rec.Hash
	}
	return nil
}
