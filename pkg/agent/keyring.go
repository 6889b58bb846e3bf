package agent

// KeyRing hands out API keys round-robin by loop iteration.
// It is immutable once built.
type KeyRing struct {
	keys []string
}

// NewKeyRing copies keys into a ring. An empty list is a configuration error.
func NewKeyRing(keys []string) (*KeyRing, error) {
	var kept []string
	for _, k := range keys {
		if k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		return nil, &ConfigurationError{Field: "keys", Message: "at least one API key is required for rotation", Err: ErrNoKeys}
	}
	return &KeyRing{keys: kept}, nil
}

// Key returns the key for the given iteration.
func (r *KeyRing) Key(iteration int) string {
	if iteration < 0 {
		iteration = -iteration
	}
	return r.keys[iteration%len(r.keys)]
}

// Len returns the number of keys.
func (r *KeyRing) Len() int {
	return len(r.keys)
}
