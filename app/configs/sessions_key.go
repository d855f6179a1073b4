package configs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog/log"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
	// CSRFKey is nil when CSRF protection is disabled.
	CSRFKey []byte
	// IdentityKey verifies the identity assertions of the auth collaborator.
	IdentityKey []byte
}

// KeyPairs returns the keys in the order gorilla/sessions expects them.
func (k *SessionKeys) KeyPairs() [][]byte {
	if len(k.EncKey) == 0 {
		return [][]byte{k.AuthKey}
	}
	return [][]byte{k.AuthKey, k.EncKey}
}

// LoadSessionKeys decodes the base64 keys from env. When APP_AUTH_KEY is not
// set, SESSION_KEY is used verbatim as the signing key and cookies are not
// encrypted.
func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	keys := &SessionKeys{}

	switch {
	case env.AppAuthKey != "":
		authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
		}
		keys.AuthKey = authKey
	case env.SessionKey != "":
		log.Warn().Msg("APP_AUTH_KEY not set, signing sessions with SESSION_KEY")
		keys.AuthKey = []byte(env.SessionKey)
	default:
		return nil, errors.New("APP_AUTH_KEY or SESSION_KEY environment variable must be set")
	}

	if env.AppEncKey != "" {
		encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
		}
		if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
			return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding. Must be 16, 24, or 32 bytes for AES encryption", len(encKey))
		}
		keys.EncKey = encKey
	}

	if env.CSRFKey != "" {
		csrfKey, err := base64.URLEncoding.DecodeString(env.CSRFKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
		}
		if len(csrfKey) != 32 {
			return nil, fmt.Errorf("CSRF_KEY has invalid length %d after decoding. Must be 32 bytes", len(csrfKey))
		}
		keys.CSRFKey = csrfKey
	}

	if env.IdentityKey == "" {
		return nil, errors.New("IDENTITY_KEY environment variable must be set")
	}
	identityKey, err := base64.URLEncoding.DecodeString(env.IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode IDENTITY_KEY from Base64: %w", err)
	}
	if len(identityKey) < 32 {
		return nil, fmt.Errorf("IDENTITY_KEY has invalid length %d after decoding. Must be at least 32 bytes", len(identityKey))
	}
	keys.IdentityKey = identityKey

	return keys, nil
}

// GenerateAndPrintSessionKeys writes a fresh set of keys to out and, when
// envFile is not empty, to that file in .env format.
func GenerateAndPrintSessionKeys(out io.Writer, envFile string) error {
	lines := ""
	for _, k := range []struct {
		name string
		size int
	}{
		{"APP_AUTH_KEY", 64},
		{"APP_ENC_KEY", 32},
		{"CSRF_KEY", 32},
		{"IDENTITY_KEY", 64},
	} {
		key := securecookie.GenerateRandomKey(k.size)
		if key == nil {
			return fmt.Errorf("could not generate %s", k.name)
		}
		lines += fmt.Sprintf("%s=%s\n", k.name, base64.URLEncoding.EncodeToString(key))
	}

	fmt.Fprintln(out, "================================================")
	fmt.Fprint(out, lines)
	fmt.Fprintln(out, "================================================")

	if envFile == "" {
		return nil
	}
	if err := os.WriteFile(envFile, []byte(lines), 0o600); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", envFile, err)
	}
	fmt.Fprintf(out, "Keys have been written to '%s'. Copy them into your .env file.\n", envFile)
	fmt.Fprintln(out, "If you regenerate, existing sessions will be invalidated.")
	fmt.Fprintln(out, "IDENTITY_KEY must be shared with the auth service that signs identity assertions.")
	return nil
}
