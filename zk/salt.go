package zk

import "sync"

var (
	sessionSaltOnce  sync.Once
	sessionSaltValue BaseElement
)

// SessionSalt returns the process-wide field element bound into every
// chain-hash computation. It is drawn from a cryptographically strong
// RNG exactly once per process and is stable for the process lifetime;
// a proof or chain produced under one salt is unverifiable against
// another. There is no rotation.
func SessionSalt() BaseElement {
	sessionSaltOnce.Do(func() {
		salt, err := RandomElement()
		if err != nil {
			// crypto/rand failure is unrecoverable for a process that
			// depends on unpredictable salts; fail loudly rather than
			// silently falling back to a predictable value.
			panic("zk: failed to initialize session salt: " + err.Error())
		}
		sessionSaltValue = salt
	})
	return sessionSaltValue
}
