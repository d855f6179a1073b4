package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/gorilla/securecookie"
)

const (
	assertionName = "bookstore-identity"

	DefaultAssertionTTL = 5 * time.Minute
)

var ErrInvalidAssertion = errors.New("identity assertion rejected")

// IdentityVerifier checks the identity assertions minted by the auth
// collaborator. Both sides share the signing key; an assertion is only valid
// for a short time after it was issued.
type IdentityVerifier struct {
	codec *securecookie.SecureCookie
}

func NewIdentityVerifier(key []byte, ttl time.Duration) *IdentityVerifier {
	if ttl <= 0 {
		ttl = DefaultAssertionTTL
	}
	codec := securecookie.New(key, nil)
	codec.MaxAge(int(ttl / time.Second))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &IdentityVerifier{codec: codec}
}

// Issue signs identity. The server itself only uses it for tooling.
func (v *IdentityVerifier) Issue(identity models.Identity) (string, error) {
	if identity.IsGuest() {
		return "", fmt.Errorf("%w: no user id or email", ErrInvalidAssertion)
	}
	return v.codec.Encode(assertionName, identity)
}

// Verify returns the identity carried by token. Unsigned, tampered, expired
// and guest assertions are rejected with ErrInvalidAssertion.
func (v *IdentityVerifier) Verify(token string) (models.Identity, error) {
	var identity models.Identity
	if err := v.codec.Decode(assertionName, token, &identity); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrInvalidAssertion, err)
	}
	if identity.IsGuest() {
		return models.Identity{}, fmt.Errorf("%w: no user id or email", ErrInvalidAssertion)
	}
	return identity, nil
}
