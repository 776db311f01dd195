package types

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/blockberries/txcodec"
)

// Registry maps type URLs to constructors for one family of variants.
// It is an explicit value: independent registries (for chains with
// different message sets) coexist without shared state.
//
// Registry is safe for concurrent use.
type Registry[T txcodec.Packable] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]func() T
}

// NewRegistry creates an empty registry. Kind names the family in
// errors, e.g. "Msg".
func NewRegistry[T txcodec.Packable](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]func() T),
	}
}

// Register adds a variant. The factory must return a fresh, empty
// pointer value; its TypeURL is the registered name.
func (r *Registry[T]) Register(factory func() T) error {
	typeURL := factory().TypeURL()
	if typeURL == "" {
		return fmt.Errorf("register %s: empty type URL", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeURL]; exists {
		return fmt.Errorf("register %s: %q already registered", r.kind, typeURL)
	}
	r.factories[typeURL] = factory
	return nil
}

// Has reports whether typeURL is registered.
func (r *Registry[T]) Has(typeURL string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeURL]
	return ok
}

// TypeURLs returns the registered type URLs in sorted order.
func (r *Registry[T]) TypeURLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

func (r *Registry[T]) factory(typeURL string) (func() T, error) {
	r.mu.RLock()
	f, ok := r.factories[typeURL]
	r.mu.RUnlock()
	if !ok {
		return nil, txcodec.NewUnrecognizedTypeError(r.kind, typeURL)
	}
	return f, nil
}

// Pack wraps a registered variant in a TypedPayload.
func (r *Registry[T]) Pack(v T) (TypedPayload, error) {
	if any(v) == nil {
		return TypedPayload{}, txcodec.NewInvariantError(r.kind, "nil value")
	}
	if !r.Has(v.TypeURL()) {
		return TypedPayload{}, txcodec.NewUnrecognizedTypeError(r.kind, v.TypeURL())
	}
	return NewTypedPayload(v)
}

// Unpack recovers the variant carried by p. Unknown type URLs yield an
// UnrecognizedTypeError.
func (r *Registry[T]) Unpack(u txcodec.Unpacker, p TypedPayload) (T, error) {
	var zero T
	f, err := r.factory(p.TypeURL)
	if err != nil {
		return zero, err
	}
	v := f()
	if err := v.FromWire(u, p.Value); err != nil {
		return zero, fmt.Errorf("unpack %s: %w", p.TypeURL, err)
	}
	return v, nil
}

// FromDocument recovers a variant from its document, dispatching on
// the "@type" key.
func (r *Registry[T]) FromDocument(u txcodec.Unpacker, doc txcodec.Document) (T, error) {
	var zero T
	typeURL, ok := doc["@type"].(string)
	if !ok {
		return zero, txcodec.NewDecodeError(r.kind+".@type", "missing")
	}
	f, err := r.factory(typeURL)
	if err != nil {
		return zero, err
	}
	v := f()
	if err := v.FromDocument(u, doc); err != nil {
		return zero, fmt.Errorf("decode %s: %w", typeURL, err)
	}
	return v, nil
}

// InterfaceRegistry holds the registries of every polymorphic family
// the transaction model embeds. It implements txcodec.Unpacker.
type InterfaceRegistry struct {
	Msgs       *Registry[txcodec.Msg]
	PublicKeys *Registry[txcodec.PublicKey]
}

// Compile-time interface check.
var _ txcodec.Unpacker = (*InterfaceRegistry)(nil)

// NewInterfaceRegistry creates an empty registry. Register public keys
// with RegisterPublicKeys and messages through their modules.
func NewInterfaceRegistry() *InterfaceRegistry {
	return &InterfaceRegistry{
		Msgs:       NewRegistry[txcodec.Msg]("Msg"),
		PublicKeys: NewRegistry[txcodec.PublicKey]("PublicKey"),
	}
}

func (r *InterfaceRegistry) UnpackMsg(typeURL string, value []byte) (txcodec.Msg, error) {
	return r.Msgs.Unpack(r, TypedPayload{TypeURL: typeURL, Value: value})
}

func (r *InterfaceRegistry) UnpackPublicKey(typeURL string, value []byte) (txcodec.PublicKey, error) {
	return r.PublicKeys.Unpack(r, TypedPayload{TypeURL: typeURL, Value: value})
}

func (r *InterfaceRegistry) MsgFromDocument(doc txcodec.Document) (txcodec.Msg, error) {
	return r.Msgs.FromDocument(r, doc)
}

func (r *InterfaceRegistry) PublicKeyFromDocument(doc txcodec.Document) (txcodec.PublicKey, error) {
	return r.PublicKeys.FromDocument(r, doc)
}
