package types

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/blockberries/txcodec"
)

// TxTypeURL names a Tx packed in a google.protobuf.Any.
const TxTypeURL = "/cosmos.tx.v1beta1.Tx"

// placeholderSignature stands in for a signature that has not been
// produced yet. Gas simulation accepts it.
var placeholderSignature = []byte(" ")

// Tx is a transaction: body, authorization metadata, and one signature
// per signer, in signer order.
type Tx struct {
	Body       TxBody
	AuthInfo   AuthInfo
	Signatures [][]byte
}

// NewTx returns an unsigned transaction.
func NewTx(msgs []txcodec.Msg, memo string, fee Fee) Tx {
	return Tx{
		Body:     TxBody{Messages: msgs, Memo: memo},
		AuthInfo: AuthInfo{Fee: fee},
	}
}

func (t Tx) validate() error {
	if len(t.Signatures) != len(t.AuthInfo.SignerInfos) {
		return txcodec.NewInvariantError("Tx", fmt.Sprintf(
			"%d signatures for %d signers", len(t.Signatures), len(t.AuthInfo.SignerInfos)))
	}
	return nil
}

// AppendEmptySignatures adds a signer info and a placeholder signature
// for each signer, in order. Signers without a key (nil, or a nil
// multisig pointer) get the empty secp256k1 key; multisig keys get a
// multi mode with one bit per key.
// Key material is never inspected.
func (t *Tx) AppendEmptySignatures(signers []SignerData) {
	for _, signer := range signers {
		info := SignerInfo{
			PublicKey: signer.PublicKey,
			Sequence:  signer.Sequence,
			ModeInfo:  ModeInfoSingle{Mode: SignModeDirect},
		}
		switch pk := signer.PublicKey.(type) {
		case nil:
			info.PublicKey = EmptyPublicKey()
		case *LegacyAminoPubKey:
			if pk == nil {
				info.PublicKey = EmptyPublicKey()
				break
			}
			info.ModeInfo = ModeInfoMulti{Bitarray: NewCompactBitArray(len(pk.PublicKeys))}
		}
		t.AuthInfo.SignerInfos = append(t.AuthInfo.SignerInfos, info)
		t.Signatures = append(t.Signatures, append([]byte(nil), placeholderSignature...))
	}
}

// SetSignature replaces the signature of signer i.
func (t *Tx) SetSignature(i int, sig []byte) error {
	if i < 0 || i >= len(t.Signatures) {
		return txcodec.NewInvariantError("Tx", fmt.Sprintf("signature index %d out of range [0, %d)", i, len(t.Signatures)))
	}
	t.Signatures[i] = sig
	return nil
}

func (t Tx) ToDocument() (txcodec.Document, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	body, err := t.Body.ToDocument()
	if err != nil {
		return nil, err
	}
	auth, err := t.AuthInfo.ToDocument()
	if err != nil {
		return nil, err
	}
	sigs := make([]any, len(t.Signatures))
	for i, sig := range t.Signatures {
		sigs[i] = encodeBytes(sig)
	}
	return txcodec.Document{
		"body":       body,
		"auth_info":  auth,
		"signatures": sigs,
	}, nil
}

// TxFromDocument decodes a transaction document. A legacy amino
// envelope {"type": ..., "value": {...}} is unwrapped first.
func TxFromDocument(u txcodec.Unpacker, doc txcodec.Document) (Tx, error) {
	var t Tx
	r := readDocument("Tx", unwrapAmino(doc))
	if body, ok := r.sub("body", true); ok {
		b, err := TxBodyFromDocument(u, body)
		r.fail("body", err)
		t.Body = b
	}
	if auth, ok := r.sub("auth_info", true); ok {
		a, err := AuthInfoFromDocument(u, auth)
		r.fail("auth_info", err)
		t.AuthInfo = a
	}
	if sigs, ok := r.list("signatures", false); ok {
		for i, v := range sigs {
			s, ok := v.(string)
			if !ok {
				r.invalid("signatures["+strconv.Itoa(i)+"]", "not a string", nil)
				break
			}
			sig, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				r.invalid("signatures["+strconv.Itoa(i)+"]", "not base64", err)
				break
			}
			t.Signatures = append(t.Signatures, sig)
		}
	}
	return t, r.Err()
}

func (t Tx) ToWire() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	body, err := t.Body.ToWire()
	if err != nil {
		return nil, err
	}
	auth, err := t.AuthInfo.ToWire()
	if err != nil {
		return nil, err
	}
	var b []byte
	b = appendBytesElem(b, 1, body)
	b = appendBytesElem(b, 2, auth)
	for _, sig := range t.Signatures {
		b = appendBytesElem(b, 3, sig)
	}
	return b, nil
}

// TxFromWire decodes a cosmos.tx.v1beta1.Tx.
func TxFromWire(u txcodec.Unpacker, bz []byte) (Tx, error) {
	var t Tx
	r := newWireReader("Tx", bz)
	for r.next() {
		switch r.field() {
		case 1:
			b, err := TxBodyFromWire(u, r.bytes("body"))
			r.fail("body", err)
			t.Body = b
		case 2:
			a, err := AuthInfoFromWire(u, r.bytes("auth_info"))
			r.fail("auth_info", err)
			t.AuthInfo = a
		case 3:
			sig := r.bytes("signatures")
			if r.Err() == nil {
				t.Signatures = append(t.Signatures, append([]byte{}, sig...))
			}
		default:
			r.skip()
		}
	}
	return t, r.Err()
}

// Hash returns the chain's hash of the encoded transaction.
func (t Tx) Hash() (string, error) {
	bz, err := t.ToWire()
	if err != nil {
		return "", err
	}
	return TxHash(bz), nil
}

// TxHash is the upper-case hex SHA-256 of the transaction bytes, as the
// chain reports it in txhash.
func TxHash(txBytes []byte) string {
	sum := sha256.Sum256(txBytes)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
