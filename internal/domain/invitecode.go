package domain

import (
	"crypto/rand"
	"math/big"
)

const inviteCodeLength = 6

var inviteCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateInviteCode returns a short random invite code drawn from
// crypto/rand. Both storage backends draw from the same 36^6 token
// space; uniqueness is enforced per backend (unique index, map lookup)
// with a retry on the rare collision.
func GenerateInviteCode() (string, error) {
	b := make([]rune, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
