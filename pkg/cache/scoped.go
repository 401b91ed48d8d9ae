package cache

// ScopedKeyer wraps a Keyer with a prefix so incompatible result formats
// never share entries. The CLI scopes keys by release version:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScanKey generates a prefixed key for a scan result.
func (k *ScopedKeyer) ScanKey(fingerprint string, contextLen int) string {
	return k.prefix + k.inner.ScanKey(fingerprint, contextLen)
}

// MeasureKey generates a prefixed key for a measure result.
func (k *ScopedKeyer) MeasureKey(fingerprint string) string {
	return k.prefix + k.inner.MeasureKey(fingerprint)
}
