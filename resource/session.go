package resource

import (
	"net/http"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/fasorail/recharges/types"
	cache "github.com/patrickmn/go-cache"
)

// TokenLength is the length of the bearer tokens handed out on login
const TokenLength = 48

// Session is an authenticated API client
type Session struct {
	Token   string
	UserID  string
	Created time.Time

	// User is loaded when the session is used to authenticate a request
	User *types.User
}

// SessionStore keeps API sessions in memory until they expire
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore returns a new, initialized SessionStore whose sessions
// expire ttl after their last use
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Create starts a new session for user
func (s *SessionStore) Create(user *types.User) *Session {
	session := &Session{
		Token:   uniuri.NewLen(TokenLength),
		UserID:  user.ID,
		Created: time.Now(),
	}
	s.cache.SetDefault(session.Token, *session)
	return session
}

// Get returns the session with the given token and extends its lifetime
func (s *SessionStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	value, present := s.cache.Get(token)
	if !present {
		return nil, false
	}
	session := value.(Session)
	s.cache.SetDefault(token, session)
	return &session, true
}

// Delete ends the session with the given token
func (s *SessionStore) Delete(token string) {
	s.cache.Delete(token)
}

// Count returns the number of open sessions
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// BearerToken returns the token in the Authorization header of r, if any
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
