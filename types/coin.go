package types

import (
	"fmt"
	"strings"

	"github.com/blockberries/txcodec"
	"google.golang.org/protobuf/encoding/protowire"
)

// Coin is an amount of one denomination. The amount is kept as the
// chain's decimal string; no arithmetic is done here.
type Coin struct {
	Denom  string
	Amount string
}

// Coins is a list of coins in the order given.
type Coins []Coin

func NewCoin(amount, denom string) Coin { return Coin{Denom: denom, Amount: amount} }

// String renders the coin the way the chain CLI does, e.g. "100uluna".
func (c Coin) String() string { return c.Amount + c.Denom }

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

func (c Coin) ToDocument() (txcodec.Document, error) {
	return txcodec.Document{"denom": c.Denom, "amount": c.Amount}, nil
}

func CoinFromDocument(doc txcodec.Document) (Coin, error) {
	r := readDocument("Coin", doc)
	c := Coin{
		Denom:  r.str("denom", true),
		Amount: r.str("amount", true),
	}
	return c, r.Err()
}

func (c Coin) ToWire() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, c.Denom)
	b = appendStringField(b, 2, c.Amount)
	return b, nil
}

func CoinFromWire(bz []byte) (Coin, error) {
	var c Coin
	r := newWireReader("Coin", bz)
	for r.next() {
		switch r.field() {
		case 1:
			c.Denom = r.string("denom")
		case 2:
			c.Amount = r.string("amount")
		default:
			r.skip()
		}
	}
	return c, r.Err()
}

// ToDocument renders the coins as a list; nil renders as an empty list.
func (cs Coins) ToDocument() ([]any, error) {
	return documentList(cs, Coin.ToDocument)
}

// appendCoins writes each coin as one element of repeated field num.
func appendCoins(b []byte, num protowire.Number, cs Coins) []byte {
	for _, c := range cs {
		bz, _ := c.ToWire()
		b = appendBytesElem(b, num, bz)
	}
	return b
}

// readCoins reads the coin list at key. A missing key yields nil.
func readCoins(r *docReader, key string) Coins {
	var cs Coins
	r.docs(key, false, func(_ int, d txcodec.Document) error {
		c, err := CoinFromDocument(d)
		if err != nil {
			return err
		}
		cs = append(cs, c)
		return nil
	})
	return cs
}

// wireCoin decodes one coin element and appends it, recording failures
// on r under field name.
func wireCoin(r *wireReader, name string, cs Coins) Coins {
	c, err := CoinFromWire(r.bytes(name))
	if err != nil {
		r.fail(fmt.Sprintf("%s[%d]", name, len(cs)), err)
		return cs
	}
	return append(cs, c)
}

// CoinsFromDocument decodes a coin list as produced by Coins.ToDocument.
// A nil value yields nil.
func CoinsFromDocument(v any) (Coins, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := asList(v)
	if !ok {
		return nil, txcodec.NewDecodeError("Coins", "not a list")
	}
	var cs Coins
	for i, item := range l {
		d, ok := asDocument(item)
		if !ok {
			return nil, txcodec.NewDecodeError(fmt.Sprintf("Coins[%d]", i), "not an object")
		}
		c, err := CoinFromDocument(d)
		if err != nil {
			return nil, &txcodec.DecodeError{Field: fmt.Sprintf("Coins[%d]", i), Reason: "invalid", Err: err}
		}
		cs = append(cs, c)
	}
	return cs, nil
}
