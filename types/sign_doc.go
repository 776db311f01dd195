package types

import "github.com/blockberries/txcodec"

// SignDoc is the payload a SIGN_MODE_DIRECT signer signs.
type SignDoc struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	ChainID       string
	AccountNumber uint64
}

// NewSignDoc builds the sign doc of tx for one signer account.
func NewSignDoc(tx Tx, chainID string, accountNumber uint64) (SignDoc, error) {
	body, err := tx.Body.ToWire()
	if err != nil {
		return SignDoc{}, err
	}
	auth, err := tx.AuthInfo.ToWire()
	if err != nil {
		return SignDoc{}, err
	}
	return SignDoc{
		BodyBytes:     cloneBytes(body),
		AuthInfoBytes: cloneBytes(auth),
		ChainID:       chainID,
		AccountNumber: accountNumber,
	}, nil
}

func (d SignDoc) ToWire() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, d.BodyBytes)
	b = appendBytesField(b, 2, d.AuthInfoBytes)
	b = appendStringField(b, 3, d.ChainID)
	b = appendVarintField(b, 4, d.AccountNumber)
	return b, nil
}

func SignDocFromWire(bz []byte) (SignDoc, error) {
	var d SignDoc
	r := newWireReader("SignDoc", bz)
	for r.next() {
		switch r.field() {
		case 1:
			d.BodyBytes = cloneBytes(r.bytes("body_bytes"))
		case 2:
			d.AuthInfoBytes = cloneBytes(r.bytes("auth_info_bytes"))
		case 3:
			d.ChainID = r.string("chain_id")
		case 4:
			d.AccountNumber = r.varint("account_number")
		default:
			r.skip()
		}
	}
	return d, r.Err()
}

func (d SignDoc) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{
		"body_bytes":      encodeBytes(d.BodyBytes),
		"auth_info_bytes": encodeBytes(d.AuthInfoBytes),
		"chain_id":        d.ChainID,
		"account_number":  formatUint64(d.AccountNumber),
	}, nil
}

func SignDocFromDocument(doc txcodec.Document) (SignDoc, error) {
	r := readDocument("SignDoc", doc)
	d := SignDoc{
		BodyBytes:     r.bytes("body_bytes", true),
		AuthInfoBytes: r.bytes("auth_info_bytes", true),
		ChainID:       r.str("chain_id", true),
		AccountNumber: r.uint64("account_number", true),
	}
	return d, r.Err()
}
