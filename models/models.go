package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// GroupID identifies a group on the contract. Supplied externally and
// stable for the group's lifetime.
type GroupID int64

// AuthToken is an opaque signed credential produced by the identity
// collaborator. An empty token means "not authenticated".
type AuthToken string

// Address is a hex account identifier. Comparisons are case-insensitive
// even though API boundaries carry it as a case-sensitive string.
type Address string

// Normalize returns the canonical lowercase form of the address.
func (a Address) Normalize() Address {
	return Address(strings.ToLower(string(a)))
}

// Equal compares two addresses ignoring case.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}

// Short returns the abbreviated display form, e.g. "0x1234...abcd".
// Built on the checksummed rendering so the visible characters carry
// the EIP-55 case regardless of how the boundary delivered the address.
func (a Address) Short() string {
	s := a.Checksum()
	if len(s) < 10 {
		return string(a)
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// Checksum returns the EIP-55 mixed-case form of the address: each hex
// letter is uppercased when the corresponding nibble of the Keccak-256
// hash of the lowercase address is >= 8. Inputs too long to be an
// address are passed through lowercased rather than checksummed.
func (a Address) Checksum() string {
	s := strings.TrimPrefix(strings.ToLower(string(a)), "0x")
	if len(s) > 64 {
		return "0x" + s
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	hash := h.Sum(nil)

	var sb strings.Builder
	sb.WriteString("0x")
	for i, ch := range []byte(s) {
		if ch >= 'a' && ch <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			} else {
				nibble &= 0x0f
			}
			if nibble >= 8 {
				ch = ch - 'a' + 'A'
			}
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

// Message is a single group message as returned by the message service.
// Sequences are already in ascending-timestamp send order.
type Message struct {
	Sender    Address `json:"sender"`
	Content   string  `json:"content"`
	Timestamp int64   `json:"timestamp"` // seconds since epoch
}

// Time returns the message timestamp as local time.
func (m Message) Time() time.Time {
	return time.Unix(m.Timestamp, 0)
}

// Day returns the local calendar day of the message, used for date
// separator detection.
func (m Message) Day() string {
	return m.Time().Format("2006-01-02")
}

// GroupDetails is the contract's view of a group. The first member is
// the group's owner/creator; this is an invariant of the contract, not
// something the client enforces.
type GroupDetails struct {
	Name    string
	Members []Address
}

// Owner returns the group creator, or "" for an empty group.
func (d GroupDetails) Owner() Address {
	if len(d.Members) == 0 {
		return ""
	}
	return d.Members[0]
}

// SignInKey returns the durable storage key for an address's last
// sign-in marker.
func SignInKey(a Address) string {
	return fmt.Sprintf("lastSignIn_%s", a.Normalize())
}
