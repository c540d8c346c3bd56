package config

const redacted = "[REDACTED]"

// Secret holds a credential. It formats as a placeholder so settings can be
// logged; Expose returns the real value.
type Secret string

func (s Secret) Expose() string {
	return string(s)
}

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return redacted
}

func (s Secret) MarshalYAML() (any, error) {
	return redacted, nil
}
