package cmd

import (
	"fmt"
	"io"

	"github.com/Rakhulsr/go-bookstore/app/configs"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
)

// SignIdentity prints an assertion for identity that POST
// /api/session/identity accepts.
func SignIdentity(out io.Writer, env configs.ENV, identity models.Identity) error {
	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}
	token, err := sessions.NewIdentityVerifier(keys.IdentityKey, env.IdentityAssertionTTL).Issue(identity)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
