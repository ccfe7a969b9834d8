package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
)

const (
	defaultNumKeys = 3
	maxNumKeys     = 10
	keyIDPrefix    = "tilldesk-"
)

// KeyManager owns the EdDSA signing keys of one process and the verifier
// for the tokens they sign.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	mu      sync.RWMutex
	signers []Signer
}

type KeyManagerOptions struct {
	Issuer   string
	Audience []string
	// NumKeys defaults to 3 and is capped at 10.
	NumKeys int
	// VerifyOptions overrides Leeway and Now on the verifier.
	VerifyOptions VerifyOptions
}

// NewEphemeralKeyManager generates keys that only live in memory. Every
// token becomes invalid when the process restarts, which for this service
// means staff sign in again after a deploy.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = defaultNumKeys
	}
	numKeys = min(numKeys, maxNumKeys)

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)
	for i := range numKeys {
		signer, err := generateSigner()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	vopts := opts.VerifyOptions
	vopts.Issuer = opts.Issuer
	vopts.Audience = opts.Audience

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, vopts),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// NewEphemeralSigner returns a standalone EdDSA signer with a random key id.
func NewEphemeralSigner() (*EdDSASigner, error) {
	return generateSigner()
}

func generateSigner() (*EdDSASigner, error) {
	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	pemBytes, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	return NewSignerEdDSA(keyIDPrefix+kid, pemBytes)
}

func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns one of the signing keys at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}
