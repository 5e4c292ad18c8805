// Package identity holds the client's view of the wallet-linked
// identity. The authentication handshake itself lives in an external
// collaborator; this package only carries its outcome (address plus
// signed token) and the durable last-sign-in marker.
package identity

import (
	"time"

	"fanhub/models"
	"fanhub/store"
)

// Session is an attached identity: a wallet address and the signed auth
// token the collaborator produced for it. Auth may be empty, which
// means every mutation fails before reaching a gateway.
type Session struct {
	Address models.Address
	Auth    models.AuthToken

	store *store.Store
}

// Attach builds a session and, when authenticated, records the
// last-sign-in marker for the address.
func Attach(st *store.Store, address models.Address, auth models.AuthToken) (*Session, error) {
	s := &Session{
		Address: address.Normalize(),
		Auth:    auth,
		store:   st,
	}
	if s.Authenticated() {
		if err := st.SetLastSignIn(s.Address, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Authenticated reports whether the session carries a signed token.
func (s *Session) Authenticated() bool {
	return s.Auth != "" && s.Address != ""
}

// Disconnect drops the token and clears the durable sign-in marker.
func (s *Session) Disconnect() error {
	s.Auth = ""
	return s.store.ClearLastSignIn(s.Address)
}
