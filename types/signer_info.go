package types

import "github.com/blockberries/txcodec"

// SignerInfo is the authorization metadata of one signer.
type SignerInfo struct {
	// PublicKey is nil when the key is not supplied, as for accounts
	// whose key is already on chain.
	PublicKey txcodec.PublicKey
	Sequence  uint64
	ModeInfo  ModeInfo
}

// SignerData describes a signer before it has signed.
type SignerData struct {
	Sequence  uint64
	PublicKey txcodec.PublicKey
}

func (s SignerInfo) ToDocument() (txcodec.Document, error) {
	mode, err := modeInfoDocument(s.ModeInfo)
	if err != nil {
		return nil, err
	}
	doc := txcodec.Document{
		"public_key": nil,
		"mode_info":  mode,
		"sequence":   formatUint64(s.Sequence),
	}
	if s.PublicKey != nil {
		pk, err := s.PublicKey.ToDocument()
		if err != nil {
			return nil, err
		}
		doc["public_key"] = pk
	}
	return doc, nil
}

func SignerInfoFromDocument(u txcodec.Unpacker, doc txcodec.Document) (SignerInfo, error) {
	var s SignerInfo
	r := readDocument("SignerInfo", doc)
	if pk, ok := r.sub("public_key", false); ok {
		key, err := u.PublicKeyFromDocument(pk)
		r.fail("public_key", err)
		s.PublicKey = key
	}
	if mode, ok := r.sub("mode_info", true); ok {
		m, err := ModeInfoFromDocument(mode)
		r.fail("mode_info", err)
		s.ModeInfo = m
	}
	s.Sequence = r.uint64("sequence", true)
	return s, r.Err()
}

func (s SignerInfo) ToWire() ([]byte, error) {
	mode, err := modeInfoWire(s.ModeInfo)
	if err != nil {
		return nil, err
	}
	var b []byte
	if s.PublicKey != nil {
		p, err := NewTypedPayload(s.PublicKey)
		if err != nil {
			return nil, err
		}
		bz, _ := p.ToWire()
		b = appendBytesElem(b, 1, bz)
	}
	b = appendBytesElem(b, 2, mode)
	b = appendVarintField(b, 3, s.Sequence)
	return b, nil
}

func SignerInfoFromWire(u txcodec.Unpacker, bz []byte) (SignerInfo, error) {
	var s SignerInfo
	r := newWireReader("SignerInfo", bz)
	for r.next() {
		switch r.field() {
		case 1:
			p, err := TypedPayloadFromWire(r.bytes("public_key"))
			if err != nil {
				r.fail("public_key", err)
				continue
			}
			key, err := u.UnpackPublicKey(p.TypeURL, p.Value)
			r.fail("public_key", err)
			s.PublicKey = key
		case 2:
			m, err := ModeInfoFromWire(r.bytes("mode_info"))
			r.fail("mode_info", err)
			s.ModeInfo = m
		case 3:
			s.Sequence = r.varint("sequence")
		default:
			r.skip()
		}
	}
	if err := r.Err(); err != nil {
		return SignerInfo{}, err
	}
	if s.ModeInfo == nil {
		return SignerInfo{}, txcodec.NewDecodeError("SignerInfo.mode_info", "missing")
	}
	return s, nil
}
