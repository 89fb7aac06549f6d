package wire

import (
	"io"

	"chainstats/pkg/bytesource"
)

// Witness is a SegWit input's stack of witness items. A nil Witness means
// either the transaction is not SegWit, or the field was present on the
// wire but carried zero items, which is the common case for legacy-style
// inputs inside an otherwise-SegWit transaction.
type Witness [][]byte

func deserializeWitness(r *bytesource.Reader) (Witness, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	items := make(Witness, n)
	for i := range items {
		itemLen, err := r.ReadVarInt()
		if err != nil {
			return nil, err
		}
		item, err := r.Read(int(itemLen))
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

func (w Witness) serialize(out io.Writer) error {
	if err := writeVarInt(out, uint64(len(w))); err != nil {
		return err
	}
	for _, item := range w {
		if err := writeVarInt(out, uint64(len(item))); err != nil {
			return err
		}
		if _, err := out.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Size is the number of wire bytes this witness occupies, including its
// own item-count prefix. A nil Witness reports 1 (a zero item count), also
// for an input of a non-SegWit transaction.
func (w Witness) Size() int {
	n := varIntSize(uint64(len(w)))
	for _, item := range w {
		n += varIntSize(uint64(len(item))) + len(item)
	}
	return n
}
