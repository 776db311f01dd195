package types

import "github.com/blockberries/txcodec"

// Fee is the fee a transaction offers and the gas it may consume.
type Fee struct {
	Amount   Coins
	GasLimit uint64
	Payer    string
	Granter  string
}

func NewFee(gasLimit uint64, amount Coins) Fee {
	return Fee{Amount: amount, GasLimit: gasLimit}
}

func (f Fee) ToDocument() (txcodec.Document, error) {
	amount, err := f.Amount.ToDocument()
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"amount":    amount,
		"gas_limit": formatUint64(f.GasLimit),
		"payer":     f.Payer,
		"granter":   f.Granter,
	}, nil
}

func FeeFromDocument(doc txcodec.Document) (Fee, error) {
	r := readDocument("Fee", doc)
	f := Fee{
		Amount:   readCoins(r, "amount"),
		GasLimit: r.uint64("gas_limit", true),
		Payer:    r.str("payer", false),
		Granter:  r.str("granter", false),
	}
	return f, r.Err()
}

func (f Fee) ToWire() ([]byte, error) {
	var b []byte
	b = appendCoins(b, 1, f.Amount)
	b = appendVarintField(b, 2, f.GasLimit)
	b = appendStringField(b, 3, f.Payer)
	b = appendStringField(b, 4, f.Granter)
	return b, nil
}

func FeeFromWire(bz []byte) (Fee, error) {
	var f Fee
	r := newWireReader("Fee", bz)
	for r.next() {
		switch r.field() {
		case 1:
			f.Amount = wireCoin(r, "amount", f.Amount)
		case 2:
			f.GasLimit = r.varint("gas_limit")
		case 3:
			f.Payer = r.string("payer")
		case 4:
			f.Granter = r.string("granter")
		default:
			r.skip()
		}
	}
	return f, r.Err()
}
