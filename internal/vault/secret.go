package vault

// Secret is a fixed-size, explicitly-zeroisable holder for plaintext key
// material. It is never returned by reference from the Vault — callers
// always receive a Copy(). Grounded on tee/enclave/runtime.go's ZeroBytes/
// SecureBuffer and the design note in spec.md §9 ("fixed-size buffer with
// explicit zeroisation on drop; never expose a reference, always a copy").
type Secret struct {
	data []byte
}

// NewSecret takes ownership of b (it is not copied) and wraps it.
func NewSecret(b []byte) *Secret {
	return &Secret{data: b}
}

// Copy returns an independent copy of the secret bytes. The caller owns
// the returned slice and is responsible for zeroising it when done.
func (s *Secret) Copy() []byte {
	if s == nil || s.data == nil {
		return nil
	}
	cp := make([]byte, len(s.data))
	copy(cp, s.data)
	return cp
}

// Len reports the secret's length without exposing its bytes.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Zero overwrites the underlying bytes with zeroes. Safe to call on a nil
// receiver or an already-zeroed secret.
func (s *Secret) Zero() {
	if s == nil {
		return
	}
	ZeroBytes(s.data)
	s.data = nil
}

// ZeroBytes overwrites b in place. Exported so callers holding a Copy() can
// wipe it themselves once finished.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
