package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
)

// KeySource - provides the public key transactions are built for. The wallet connector
// lives in the user's browser; the service only ever sees the key it hands over
type KeySource interface {
	PublicKey(ctx context.Context) (string, error)
}

// StaticKey - a public key handed over by a wallet connector or typed in by the user
type StaticKey struct {
	address string
}

// NewStaticKey - creates a key source from an account address (G...)
func NewStaticKey(address string) (*StaticKey, error) {
	if !strkey.IsValidEd25519PublicKey(address) {
		return nil, errors.New("invalid public key, expected an account address (G...)")
	}

	return &StaticKey{address: address}, nil
}

// PublicKey - returns the account address
func (sk *StaticKey) PublicKey(_ context.Context) (string, error) {
	return sk.address, nil
}

// SecretKey - a key pair built from a secret seed, able to sign
type SecretKey struct {
	full *keypair.Full
}

// NewSecretKey - creates a signing key source from a secret seed (S...)
func NewSecretKey(seed string) (*SecretKey, error) {
	full, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, errors.Wrap(err, "invalid secret key")
	}

	return &SecretKey{full: full}, nil
}

// PublicKey - returns the address derived from the seed
func (sk *SecretKey) PublicKey(_ context.Context) (string, error) {
	return sk.full.Address(), nil
}

// KeyPair - returns the signing key pair
func (sk *SecretKey) KeyPair() *keypair.Full {
	return sk.full
}
