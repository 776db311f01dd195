package types

import (
	"fmt"

	"github.com/blockberries/txcodec"
)

// Public key type URLs.
const (
	SimplePublicKeyTypeURL   = "/cosmos.crypto.secp256k1.PubKey"
	ValConsPublicKeyTypeURL  = "/cosmos.crypto.ed25519.PubKey"
	LegacyAminoPubKeyTypeURL = "/cosmos.crypto.multisig.LegacyAminoPubKey"
)

// SimplePublicKey is a compressed secp256k1 account key.
type SimplePublicKey struct {
	Key []byte
}

// ValConsPublicKey is an ed25519 validator consensus key.
type ValConsPublicKey struct {
	Key []byte
}

// LegacyAminoPubKey is a threshold multisig over other keys.
type LegacyAminoPubKey struct {
	Threshold  uint32
	PublicKeys []txcodec.PublicKey
}

// Compile-time interface checks.
var (
	_ txcodec.PublicKey = (*SimplePublicKey)(nil)
	_ txcodec.PublicKey = (*ValConsPublicKey)(nil)
	_ txcodec.PublicKey = (*LegacyAminoPubKey)(nil)
)

// EmptyPublicKey is the placeholder key used for signers whose key is
// not yet known.
func EmptyPublicKey() *SimplePublicKey { return &SimplePublicKey{} }

// RegisterPublicKeys registers every public key variant.
func RegisterPublicKeys(reg *InterfaceRegistry) error {
	for _, f := range []func() txcodec.PublicKey{
		func() txcodec.PublicKey { return &SimplePublicKey{} },
		func() txcodec.PublicKey { return &ValConsPublicKey{} },
		func() txcodec.PublicKey { return &LegacyAminoPubKey{} },
	} {
		if err := reg.PublicKeys.Register(f); err != nil {
			return err
		}
	}
	return nil
}

func (SimplePublicKey) TypeURL() string { return SimplePublicKeyTypeURL }

func (k SimplePublicKey) ToDocument() (txcodec.Document, error) {
	return keyDocument(SimplePublicKeyTypeURL, k.Key), nil
}

func (k SimplePublicKey) ToWire() ([]byte, error) {
	return appendBytesField(nil, 1, k.Key), nil
}

func (k *SimplePublicKey) FromDocument(_ txcodec.Unpacker, doc txcodec.Document) error {
	key, err := keyFromDocument("SimplePublicKey", doc)
	k.Key = key
	return err
}

func (k *SimplePublicKey) FromWire(_ txcodec.Unpacker, bz []byte) error {
	key, err := keyFromWire("secp256k1.PubKey", bz)
	k.Key = key
	return err
}

func (ValConsPublicKey) TypeURL() string { return ValConsPublicKeyTypeURL }

func (k ValConsPublicKey) ToDocument() (txcodec.Document, error) {
	return keyDocument(ValConsPublicKeyTypeURL, k.Key), nil
}

func (k ValConsPublicKey) ToWire() ([]byte, error) {
	return appendBytesField(nil, 1, k.Key), nil
}

func (k *ValConsPublicKey) FromDocument(_ txcodec.Unpacker, doc txcodec.Document) error {
	key, err := keyFromDocument("ValConsPublicKey", doc)
	k.Key = key
	return err
}

func (k *ValConsPublicKey) FromWire(_ txcodec.Unpacker, bz []byte) error {
	key, err := keyFromWire("ed25519.PubKey", bz)
	k.Key = key
	return err
}

func keyDocument(typeURL string, key []byte) txcodec.Document {
	return txcodec.Document{"@type": typeURL, "key": encodeBytes(key)}
}

func keyFromDocument(entity string, doc txcodec.Document) ([]byte, error) {
	r := readDocument(entity, doc)
	key := r.bytes("key", false)
	return key, r.Err()
}

func keyFromWire(msg string, bz []byte) ([]byte, error) {
	var key []byte
	r := newWireReader(msg, bz)
	for r.next() {
		switch r.field() {
		case 1:
			key = cloneBytes(r.bytes("key"))
		default:
			r.skip()
		}
	}
	return key, r.Err()
}

func (LegacyAminoPubKey) TypeURL() string { return LegacyAminoPubKeyTypeURL }

func (k LegacyAminoPubKey) ToDocument() (txcodec.Document, error) {
	keys, err := documentList(k.PublicKeys, publicKeyDocument)
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"@type":       LegacyAminoPubKeyTypeURL,
		"threshold":   int64(k.Threshold),
		"public_keys": keys,
	}, nil
}

func (k LegacyAminoPubKey) ToWire() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(k.Threshold))
	for i, pk := range k.PublicKeys {
		if pk == nil {
			return nil, txcodec.NewInvariantError("LegacyAminoPubKey", fmt.Sprintf("nil key at %d", i))
		}
		p, err := NewTypedPayload(pk)
		if err != nil {
			return nil, err
		}
		bz, _ := p.ToWire()
		b = appendBytesElem(b, 2, bz)
	}
	return b, nil
}

func (k *LegacyAminoPubKey) FromDocument(u txcodec.Unpacker, doc txcodec.Document) error {
	r := readDocument("LegacyAminoPubKey", doc)
	k.Threshold = r.uint32("threshold", true)
	k.PublicKeys = nil
	r.docs("public_keys", false, func(_ int, d txcodec.Document) error {
		pk, err := u.PublicKeyFromDocument(d)
		if err != nil {
			return err
		}
		k.PublicKeys = append(k.PublicKeys, pk)
		return nil
	})
	return r.Err()
}

func (k *LegacyAminoPubKey) FromWire(u txcodec.Unpacker, bz []byte) error {
	k.Threshold, k.PublicKeys = 0, nil
	r := newWireReader("LegacyAminoPubKey", bz)
	for r.next() {
		switch r.field() {
		case 1:
			k.Threshold = r.uint32("threshold")
		case 2:
			name := fmt.Sprintf("public_keys[%d]", len(k.PublicKeys))
			p, err := TypedPayloadFromWire(r.bytes("public_keys"))
			if err != nil {
				r.fail(name, err)
				continue
			}
			pk, err := u.UnpackPublicKey(p.TypeURL, p.Value)
			if err != nil {
				r.fail(name, err)
				continue
			}
			k.PublicKeys = append(k.PublicKeys, pk)
		default:
			r.skip()
		}
	}
	return r.Err()
}

func publicKeyDocument(pk txcodec.PublicKey) (txcodec.Document, error) {
	if pk == nil {
		return nil, txcodec.NewInvariantError("PublicKey", "nil key")
	}
	return pk.ToDocument()
}
