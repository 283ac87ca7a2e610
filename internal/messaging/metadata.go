package messaging

import "github.com/ThreeDotsLabs/watermill/message"

// Metadata keys carried on every outbound message.
const (
	MetadataKeyPartition = "partition_key"
	MetadataKeySource    = "source"
)

// Metadata represents the headers carried alongside an event.
type Metadata map[string]string

func (m Metadata) cloneWithExtra(extra int) Metadata {
	size := len(m) + extra
	if size <= 0 {
		return Metadata{}
	}

	cloned := make(Metadata, size)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// Clone returns a shallow copy of the metadata map.
func (m Metadata) Clone() Metadata {
	return m.cloneWithExtra(0)
}

// With returns a cloned metadata map containing the provided key/value pair.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.cloneWithExtra(1)
	cloned[key] = value
	return cloned
}

// ToWatermill converts the metadata into Watermill's message metadata type.
func ToWatermill(m Metadata) message.Metadata {
	wm := make(message.Metadata, len(m))
	for k, v := range m {
		wm[k] = v
	}
	return wm
}

// FromWatermill converts Watermill message metadata into a Metadata map.
func FromWatermill(wm message.Metadata) Metadata {
	m := make(Metadata, len(wm))
	for k, v := range wm {
		m[k] = v
	}
	return m
}
