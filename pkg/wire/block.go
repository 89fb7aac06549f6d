package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"chainstats/pkg/bytesource"
)

// headerSize is the fixed 80-byte block header: version, previous block
// hash, merkle root, timestamp, bits and nonce, each as defined by the p2p
// wire format.
const headerSize = 80

// Header is a block's 80-byte header.
type Header struct {
	Version       int32
	PrevBlockHash chainhash.Hash
	MerkleRoot    chainhash.Hash
	Timestamp     uint32
	Bits          uint32
	Nonce         uint32
}

// Block is a fully parsed block: its header plus every transaction.
type Block struct {
	Header       Header
	Transactions []*Transaction

	// Size is the serialized block's byte length, as recorded alongside
	// it in the node's blk*.dat file (the 4-byte size prefix that
	// precedes every block on disk, not part of the block itself).
	Size int
}

// DeserializeHeader reads the fixed 80-byte header.
func DeserializeHeader(r *bytesource.Reader) (Header, error) {
	buf, err := r.Read(headerSize)
	if err != nil {
		return Header{}, err
	}
	var h Header
	h.Version = int32(binary.LittleEndian.Uint32(buf[0:4]))
	copy(h.PrevBlockHash[:], buf[4:36])
	copy(h.MerkleRoot[:], buf[36:68])
	h.Timestamp = binary.LittleEndian.Uint32(buf[68:72])
	h.Bits = binary.LittleEndian.Uint32(buf[72:76])
	h.Nonce = binary.LittleEndian.Uint32(buf[76:80])
	return h, nil
}

// Hash computes the block's own hash (double-SHA256 of its 80-byte
// header), in the same internal byte order the node stores it in its
// block index.
func (h Header) Hash() chainhash.Hash {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlockHash[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	return chainhash.DoubleHashH(buf[:])
}

// DeserializeBlock reads a full block (header plus every transaction) from
// r. size is the 4-byte little-endian size value read from the preceding
// blk*.dat framing; it is recorded on the result but not otherwise used
// here (the driver validates it against bytes actually consumed).
func DeserializeBlock(r *bytesource.Reader, size uint32) (*Block, error) {
	header, err := DeserializeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("wire: block header: %w", err)
	}
	numTx, err := r.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("wire: tx count: %w", err)
	}
	txs := make([]*Transaction, numTx)
	for i := range txs {
		tx, err := DeserializeTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("wire: tx %d: %w", i, err)
		}
		txs[i] = tx
	}
	return &Block{
		Header:       header,
		Transactions: txs,
		Size:         int(size),
	}, nil
}
