// internal/app/system/invitecode/invitecode.go
//
// Package invitecode generates the random alphanumeric join codes used by
// project invites and public project links.
package invitecode

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Code lengths. Invite codes are checked for collisions against their
// sibling invites; public codes rely on a sparse unique index instead.
const (
	InviteLen = 8
	PublicLen = 12
)

// maxAttempts bounds collision retries for invite codes. Exceeding it is
// surfaced as an error, never a silent duplicate.
const maxAttempts = 10

// ErrRetryBudget is returned when a unique code could not be produced
// within the retry budget.
var ErrRetryBudget = errors.New("invite code generation exhausted its retry budget")

// Random returns a random code of length n drawn from the alphanumeric
// alphabet.
func Random(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[v.Int64()]
	}
	return string(buf), nil
}

// Generate produces an invite code that the exists predicate does not
// recognize. It retries up to maxAttempts times before failing with
// ErrRetryBudget.
func Generate(exists func(code string) bool) (string, error) {
	for range maxAttempts {
		code, err := Random(InviteLen)
		if err != nil {
			return "", err
		}
		if !exists(code) {
			return code, nil
		}
	}
	return "", ErrRetryBudget
}

// GeneratePublic produces a public project link code. Uniqueness is
// enforced only by the storage layer's sparse unique index; a collision
// surfaces as a duplicate-key error on save.
func GeneratePublic() (string, error) {
	return Random(PublicLen)
}
