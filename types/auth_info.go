package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// AuthInfo carries the signers and the fee of a transaction.
type AuthInfo struct {
	SignerInfos []SignerInfo
	Fee         Fee
}

func (a AuthInfo) ToDocument() (txcodec.Document, error) {
	signers, err := documentList(a.SignerInfos, SignerInfo.ToDocument)
	if err != nil {
		return nil, err
	}
	fee, err := a.Fee.ToDocument()
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"signer_infos": signers,
		"fee":          fee,
	}, nil
}

func AuthInfoFromDocument(u txcodec.Unpacker, doc txcodec.Document) (AuthInfo, error) {
	var a AuthInfo
	r := readDocument("AuthInfo", doc)
	r.docs("signer_infos", true, func(_ int, d txcodec.Document) error {
		s, err := SignerInfoFromDocument(u, d)
		if err != nil {
			return err
		}
		a.SignerInfos = append(a.SignerInfos, s)
		return nil
	})
	if fee, ok := r.sub("fee", true); ok {
		f, err := FeeFromDocument(fee)
		r.fail("fee", err)
		a.Fee = f
	}
	return a, r.Err()
}

func (a AuthInfo) ToWire() ([]byte, error) {
	var b []byte
	for _, s := range a.SignerInfos {
		bz, err := s.ToWire()
		if err != nil {
			return nil, err
		}
		b = appendBytesElem(b, 1, bz)
	}
	fee, err := a.Fee.ToWire()
	if err != nil {
		return nil, err
	}
	b = appendBytesElem(b, 2, fee)
	return b, nil
}

func AuthInfoFromWire(u txcodec.Unpacker, bz []byte) (AuthInfo, error) {
	var a AuthInfo
	r := newWireReader("AuthInfo", bz)
	for r.next() {
		switch r.field() {
		case 1:
			s, err := SignerInfoFromWire(u, r.bytes("signer_infos"))
			if err != nil {
				r.fail(fmt.Sprintf("signer_infos[%d]", len(a.SignerInfos)), err)
				continue
			}
			a.SignerInfos = append(a.SignerInfos, s)
		case 2:
			f, err := FeeFromWire(r.bytes("fee"))
			r.fail("fee", err)
			a.Fee = f
		default:
			r.skip()
		}
	}
	return a, r.Err()
}
