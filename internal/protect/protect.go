// Package protect converts raw payment card numbers into the protected
// derivatives that are allowed to reach persistent output.
//
// The legacy system resolved its cryptor and hasher from external assemblies
// at runtime; here they are plain capability interfaces injected at
// construction. The raw PAN passes through Protect and is never stored.
package protect

import (
	"fmt"
	"strings"
)

// PANCryptor encrypts full card numbers. SetKeyFile is called once at
// start-up, before any parsing; a failure there is fatal to the run.
type PANCryptor interface {
	SetKeyFile(path string) error
	EncryptData(plaintext string) (string, error)
}

// PANHasher produces keyed, salted digests of full card numbers. The salt is
// fetched once at start-up and fixed for the process lifetime.
type PANHasher interface {
	SaltString(path string) (string, error)
	HashCardNumber(value string) (string, error)
}

// MerchantVerifier decides whether a merchant number is acceptable. The
// concrete rule set lives outside this core; the pipeline only consumes the
// predicate.
type MerchantVerifier interface {
	IsValidMerchant(merchantNumber string) bool
}

// CardData holds the protected derivatives of one PAN.
type CardData struct {
	Encrypted string
	Hash      string
	First6    string
	Last4     string
}

// Protector wraps the cryptor and hasher collaborators.
type Protector struct {
	cryptor PANCryptor
	hasher  PANHasher
	salt    string
}

// NewProtector builds a Protector and performs the one-time start-up steps:
// loading the key file into the cryptor and fetching the salt from the
// hasher. Either failing prevents any parsing.
func NewProtector(cryptor PANCryptor, hasher PANHasher, keyFile, saltFile string) (*Protector, error) {
	if cryptor == nil {
		return nil, fmt.Errorf("cryptor is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher is required")
	}

	if err := cryptor.SetKeyFile(keyFile); err != nil {
		return nil, fmt.Errorf("loading key file: %w", err)
	}

	salt, err := hasher.SaltString(saltFile)
	if err != nil {
		return nil, fmt.Errorf("fetching salt: %w", err)
	}

	return &Protector{
		cryptor: cryptor,
		hasher:  hasher,
		salt:    salt,
	}, nil
}

// NewPrepared wraps collaborators whose start-up steps (key loading, salt
// fetch) have already completed. Used where the caller needs to attribute
// start-up failures to the individual collaborator.
func NewPrepared(cryptor PANCryptor, hasher PANHasher, salt string) *Protector {
	return &Protector{
		cryptor: cryptor,
		hasher:  hasher,
		salt:    salt,
	}
}

// Protect derives the protected forms of a raw PAN. The hash input is the
// PAN concatenated with the process-wide salt. First6 and Last4 are pure
// substring operations, independent of the protection switch.
func (p *Protector) Protect(pan string) (CardData, error) {
	pan = strings.TrimSpace(pan)

	encrypted, err := p.cryptor.EncryptData(pan)
	if err != nil {
		return CardData{}, fmt.Errorf("encrypting card number: %w", err)
	}

	hash, err := p.hasher.HashCardNumber(pan + p.salt)
	if err != nil {
		return CardData{}, fmt.Errorf("hashing card number: %w", err)
	}

	return CardData{
		Encrypted: encrypted,
		Hash:      hash,
		First6:    First6(pan),
		Last4:     Last4(pan),
	}, nil
}

// First6 returns the leading six characters (the BIN/IIN) of a PAN, or the
// whole value if shorter.
func First6(pan string) string {
	if len(pan) <= 6 {
		return pan
	}
	return pan[:6]
}

// Last4 returns the trailing four characters of a PAN, or the whole value if
// shorter.
func Last4(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	return pan[len(pan)-4:]
}
