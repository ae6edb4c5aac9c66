package bind_group_provider

// BufferWrite is one queued upload into the buffer bound at Binding of Provider. Writes are
// applied in order, so a later write to the same range wins.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Marshaler is implemented by the GPU uniform types that know their std140 byte layout.
type Marshaler interface {
	Marshal() []byte
}

// UniformWrite returns a write replacing the whole uniform at binding 0 of provider, the slot
// every single-uniform provider in the engine uses.
func UniformWrite(provider BindGroupProvider, u Marshaler) BufferWrite {
	return BufferWrite{Provider: provider, Binding: 0, Data: u.Marshal()}
}
