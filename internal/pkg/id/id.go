package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort lexicographically by creation
// time, which is what makes them usable as the verification-code sort key:
// the newest record for a lookup key is simply the highest code_id.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
