// Package bank implements the messages of the cosmos bank module:
// single and multi-party coin transfers.
//
// Register them on an interface registry with RegisterInterfaces before
// decoding transactions that carry them.
package bank

import (
	"fmt"

	"github.com/blockberries/txcodec"
	"github.com/blockberries/txcodec/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message type URLs.
const (
	MsgSendTypeURL      = "/cosmos.bank.v1beta1.MsgSend"
	MsgMultiSendTypeURL = "/cosmos.bank.v1beta1.MsgMultiSend"
)

// Compile-time interface checks.
var (
	_ txcodec.Msg = (*MsgSend)(nil)
	_ txcodec.Msg = (*MsgMultiSend)(nil)
)

// RegisterInterfaces registers the bank messages on reg.
func RegisterInterfaces(reg *types.InterfaceRegistry) error {
	if err := reg.Msgs.Register(func() txcodec.Msg { return &MsgSend{} }); err != nil {
		return err
	}
	return reg.Msgs.Register(func() txcodec.Msg { return &MsgMultiSend{} })
}

// MsgSend moves coins from one account to another.
type MsgSend struct {
	FromAddress string
	ToAddress   string
	Amount      types.Coins
}

func NewMsgSend(from, to string, amount types.Coins) *MsgSend {
	return &MsgSend{FromAddress: from, ToAddress: to, Amount: amount}
}

func (MsgSend) TypeURL() string { return MsgSendTypeURL }

func (m MsgSend) ToDocument() (txcodec.Document, error) {
	amount, err := m.Amount.ToDocument()
	if err != nil {
		return nil, err
	}
	return txcodec.Document{
		"@type":        MsgSendTypeURL,
		"from_address": m.FromAddress,
		"to_address":   m.ToAddress,
		"amount":       amount,
	}, nil
}

func (m *MsgSend) FromDocument(_ txcodec.Unpacker, doc txcodec.Document) error {
	var err error
	if m.FromAddress, err = stringField("MsgSend", doc, "from_address"); err != nil {
		return err
	}
	if m.ToAddress, err = stringField("MsgSend", doc, "to_address"); err != nil {
		return err
	}
	if m.Amount, err = types.CoinsFromDocument(doc["amount"]); err != nil {
		return &txcodec.DecodeError{Field: "MsgSend.amount", Reason: "invalid", Err: err}
	}
	return nil
}

func (m MsgSend) ToWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.FromAddress)
	b = appendString(b, 2, m.ToAddress)
	return appendCoins(b, 3, m.Amount)
}

func (m *MsgSend) FromWire(_ txcodec.Unpacker, bz []byte) error {
	*m = MsgSend{}
	return walkFields("MsgSend", bz, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			m.FromAddress = string(v)
		case 2:
			m.ToAddress = string(v)
		case 3:
			c, err := types.CoinFromWire(v)
			if err != nil {
				return err
			}
			m.Amount = append(m.Amount, c)
		}
		return nil
	})
}

// Input is one funding side of a MsgMultiSend.
type Input struct {
	Address string
	Coins   types.Coins
}

// Output is one receiving side of a MsgMultiSend.
type Output struct {
	Address string
	Coins   types.Coins
}

// MsgMultiSend moves coins from a set of inputs to a set of outputs.
type MsgMultiSend struct {
	Inputs  []Input
	Outputs []Output
}

func (MsgMultiSend) TypeURL() string { return MsgMultiSendTypeURL }

func (m MsgMultiSend) ToDocument() (txcodec.Document, error) {
	inputs := make([]any, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		d, err := partyDocument(in.Address, in.Coins)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, d)
	}
	outputs := make([]any, 0, len(m.Outputs))
	for _, out := range m.Outputs {
		d, err := partyDocument(out.Address, out.Coins)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, d)
	}
	return txcodec.Document{
		"@type":   MsgMultiSendTypeURL,
		"inputs":  inputs,
		"outputs": outputs,
	}, nil
}

func (m *MsgMultiSend) FromDocument(_ txcodec.Unpacker, doc txcodec.Document) error {
	*m = MsgMultiSend{}
	if err := eachParty("MsgMultiSend.inputs", doc["inputs"], func(addr string, coins types.Coins) {
		m.Inputs = append(m.Inputs, Input{Address: addr, Coins: coins})
	}); err != nil {
		return err
	}
	return eachParty("MsgMultiSend.outputs", doc["outputs"], func(addr string, coins types.Coins) {
		m.Outputs = append(m.Outputs, Output{Address: addr, Coins: coins})
	})
}

func (m MsgMultiSend) ToWire() ([]byte, error) {
	var b []byte
	for _, in := range m.Inputs {
		bz, err := partyWire(in.Address, in.Coins)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 1, bz)
	}
	for _, out := range m.Outputs {
		bz, err := partyWire(out.Address, out.Coins)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, 2, bz)
	}
	return b, nil
}

func (m *MsgMultiSend) FromWire(_ txcodec.Unpacker, bz []byte) error {
	*m = MsgMultiSend{}
	return walkFields("MsgMultiSend", bz, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			addr, coins, err := partyFromWire("Input", v)
			if err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, Input{Address: addr, Coins: coins})
		case 2:
			addr, coins, err := partyFromWire("Output", v)
			if err != nil {
				return err
			}
			m.Outputs = append(m.Outputs, Output{Address: addr, Coins: coins})
		}
		return nil
	})
}

func partyDocument(addr string, coins types.Coins) (txcodec.Document, error) {
	cs, err := coins.ToDocument()
	if err != nil {
		return nil, err
	}
	return txcodec.Document{"address": addr, "coins": cs}, nil
}

func eachParty(field string, v any, fn func(addr string, coins types.Coins)) error {
	if v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return txcodec.NewDecodeError(field, "not a list")
	}
	for i, item := range list {
		name := fmt.Sprintf("%s[%d]", field, i)
		doc, ok := item.(map[string]any)
		if !ok {
			return txcodec.NewDecodeError(name, "not an object")
		}
		addr, err := stringField(name, doc, "address")
		if err != nil {
			return err
		}
		coins, err := types.CoinsFromDocument(doc["coins"])
		if err != nil {
			return &txcodec.DecodeError{Field: name + ".coins", Reason: "invalid", Err: err}
		}
		fn(addr, coins)
	}
	return nil
}

func partyWire(addr string, coins types.Coins) ([]byte, error) {
	return appendCoins(appendString(nil, 1, addr), 2, coins)
}

func partyFromWire(msg string, bz []byte) (string, types.Coins, error) {
	var (
		addr  string
		coins types.Coins
	)
	err := walkFields(msg, bz, func(num protowire.Number, v []byte) error {
		switch num {
		case 1:
			addr = string(v)
		case 2:
			c, err := types.CoinFromWire(v)
			if err != nil {
				return err
			}
			coins = append(coins, c)
		}
		return nil
	})
	return addr, coins, err
}

func stringField(entity string, doc txcodec.Document, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", txcodec.NewDecodeError(entity+"."+key, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", txcodec.NewDecodeError(entity+"."+key, "not a string")
	}
	return s, nil
}
