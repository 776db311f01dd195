package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// ModeInfo describes how a signer signed. It is either ModeInfoSingle
// or ModeInfoMulti; no other implementations exist.
type ModeInfo interface {
	txcodec.DocumentMarshaler
	txcodec.WireMarshaler
	isModeInfo()
}

// ModeInfoSingle is the mode of a single-key signer.
type ModeInfoSingle struct {
	Mode SignMode
}

// ModeInfoMulti is the mode of a multisig signer: which keys signed and
// the mode of each, in key order.
type ModeInfoMulti struct {
	Bitarray  CompactBitArray
	ModeInfos []ModeInfo
}

func (ModeInfoSingle) isModeInfo() {}
func (ModeInfoMulti) isModeInfo()  {}

func (m ModeInfoSingle) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{
		"single": txcodec.Document{"mode": m.Mode.documentValue()},
	}, nil
}

func (m ModeInfoSingle) ToWire() ([]byte, error) {
	var single []byte
	single = appendVarintField(single, 1, uint64(int64(m.Mode)))
	return appendBytesElem(nil, 1, single), nil
}

func (m ModeInfoMulti) ToDocument() (txcodec.Document, error) {
	bits, err := m.Bitarray.ToDocument()
	if err != nil {
		return nil, err
	}
	infos, err := documentList(m.ModeInfos, modeInfoDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"multi": txcodec.Document{
			"bitarray":   bits,
			"mode_infos": infos,
		},
	}, nil
}

func (m ModeInfoMulti) ToWire() ([]byte, error) {
	bits, err := m.Bitarray.ToWire()
	if err != nil {
		return nil, err
	}
	var multi []byte
	multi = appendBytesElem(multi, 1, bits)
	for _, info := range m.ModeInfos {
		bz, err := modeInfoWire(info)
		if err != nil {
			return nil, err
		}
		multi = appendBytesElem(multi, 2, bz)
	}
	return appendBytesElem(nil, 2, multi), nil
}

func modeInfoDocument(m ModeInfo) (txcodec.Document, error) {
	if m == nil {
		return nil, txcodec.NewInvariantError("ModeInfo", "neither single nor multi set")
	}
	return m.ToDocument()
}

func modeInfoWire(m ModeInfo) ([]byte, error) {
	if m == nil {
		return nil, txcodec.NewInvariantError("ModeInfo", "neither single nor multi set")
	}
	return m.ToWire()
}

// ModeInfoFromDocument decodes {"single": {...}} or {"multi": {...}}.
// A document carrying both or neither is rejected.
func ModeInfoFromDocument(doc txcodec.Document) (ModeInfo, error) {
	_, hasSingle := doc["single"]
	_, hasMulti := doc["multi"]
	switch {
	case hasSingle && hasMulti:
		return nil, txcodec.NewInvariantError("ModeInfo", "both single and multi set")
	case hasSingle:
		return singleFromDocument(doc)
	case hasMulti:
		return multiFromDocument(doc)
	}
	return nil, txcodec.NewDecodeError("ModeInfo", "neither single nor multi set")
}

func singleFromDocument(doc txcodec.Document) (ModeInfo, error) {
	r := readDocument("ModeInfo", doc)
	single, ok := r.sub("single", true)
	if !ok {
		return nil, r.Err()
	}
	sr := readDocument("ModeInfo.single", single)
	v, ok := sr.lookup("mode", true)
	if !ok {
		return nil, sr.Err()
	}
	mode, err := ParseSignMode(v)
	if err != nil {
		return nil, &txcodec.DecodeError{Field: "ModeInfo.single.mode", Reason: "invalid", Err: err}
	}
	return ModeInfoSingle{Mode: mode}, nil
}

func multiFromDocument(doc txcodec.Document) (ModeInfo, error) {
	r := readDocument("ModeInfo", doc)
	multi, ok := r.sub("multi", true)
	if !ok {
		return nil, r.Err()
	}
	var m ModeInfoMulti
	mr := readDocument("ModeInfo.multi", multi)
	if bits, ok := mr.sub("bitarray", true); ok {
		a, err := CompactBitArrayFromDocument(bits)
		mr.fail("bitarray", err)
		m.Bitarray = a
	}
	mr.docs("mode_infos", false, func(_ int, d txcodec.Document) error {
		info, err := ModeInfoFromDocument(d)
		if err != nil {
			return err
		}
		m.ModeInfos = append(m.ModeInfos, info)
		return nil
	})
	if err := mr.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// ModeInfoFromWire decodes a cosmos.tx.v1beta1.ModeInfo.
func ModeInfoFromWire(bz []byte) (ModeInfo, error) {
	var (
		info          ModeInfo
		single, multi bool
	)
	r := newWireReader("ModeInfo", bz)
	for r.next() {
		switch r.field() {
		case 1:
			single = true
			m, err := singleFromWire(r.bytes("single"))
			r.fail("single", err)
			info = m
		case 2:
			multi = true
			m, err := multiFromWire(r.bytes("multi"))
			r.fail("multi", err)
			info = m
		default:
			r.skip()
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	switch {
	case single && multi:
		return nil, txcodec.NewInvariantError("ModeInfo", "both single and multi set")
	case info == nil:
		return nil, txcodec.NewDecodeError("ModeInfo", "neither single nor multi set")
	}
	return info, nil
}

func singleFromWire(bz []byte) (ModeInfoSingle, error) {
	var m ModeInfoSingle
	r := newWireReader("ModeInfo.Single", bz)
	for r.next() {
		switch r.field() {
		case 1:
			m.Mode = SignMode(int32(r.varint("mode")))
		default:
			r.skip()
		}
	}
	return m, r.Err()
}

func multiFromWire(bz []byte) (ModeInfoMulti, error) {
	var m ModeInfoMulti
	r := newWireReader("ModeInfo.Multi", bz)
	for r.next() {
		switch r.field() {
		case 1:
			a, err := CompactBitArrayFromWire(r.bytes("bitarray"))
			r.fail("bitarray", err)
			m.Bitarray = a
		case 2:
			info, err := ModeInfoFromWire(r.bytes("mode_infos"))
			if err != nil {
				r.fail(fmt.Sprintf("mode_infos[%d]", len(m.ModeInfos)), err)
				continue
			}
			m.ModeInfos = append(m.ModeInfos, info)
		default:
			r.skip()
		}
	}
	return m, r.Err()
}
