package cache

// ScopedKeyer prefixes every key of an inner keyer. Layout servers scope
// their keys by release so that a shared Redis never serves a layout
// computed by another version of the engine:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.CacheScope())
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns inner with prefix prepended to its keys. A nil
// inner keyer is the default one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the scope of the keys.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
