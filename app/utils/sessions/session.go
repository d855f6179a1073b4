package sessions

import (
	"net/http"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookieName = "bookstore-session"

	browserIDSessionKey = "browserID"
	userIDSessionKey    = "userID"
	userEmailSessionKey = "userEmail"
	userNameSessionKey  = "userName"
)

// SessionStore keeps the per-browser cookie state: a stable browser id that
// scopes durable storage, and the identity handed over by the auth
// collaborator.
type SessionStore interface {
	GetBrowserID(w http.ResponseWriter, r *http.Request) (string, error)

	GetIdentity(r *http.Request) models.Identity
	SetIdentity(w http.ResponseWriter, r *http.Request, identity models.Identity) error
	ClearIdentity(w http.ResponseWriter, r *http.Request) error

	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		// a tampered or stale cookie still yields a fresh session
		log.Warn().Err(err).Msg("getSession: decoding session cookie")
	}
	return session
}

func (c *CookieSessionStore) GetBrowserID(w http.ResponseWriter, r *http.Request) (string, error) {
	session := c.getSession(r)

	if id, ok := session.Values[browserIDSessionKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	session.Values[browserIDSessionKey] = id
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

func (c *CookieSessionStore) GetIdentity(r *http.Request) models.Identity {
	session := c.getSession(r)

	stringValue := func(key string) string {
		v, _ := session.Values[key].(string)
		return v
	}
	return models.Identity{
		ID:    stringValue(userIDSessionKey),
		Email: stringValue(userEmailSessionKey),
		Name:  stringValue(userNameSessionKey),
	}
}

func (c *CookieSessionStore) SetIdentity(w http.ResponseWriter, r *http.Request, identity models.Identity) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = identity.ID
	session.Values[userEmailSessionKey] = identity.Email
	session.Values[userNameSessionKey] = identity.Name
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearIdentity(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	delete(session.Values, userIDSessionKey)
	delete(session.Values, userEmailSessionKey)
	delete(session.Values, userNameSessionKey)
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
