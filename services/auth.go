package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired or invalid")
)

// User is an entry of the static allow-list. There is no user database
// and no authorization model beyond this list.
type User struct {
	UID          string
	Name         string
	Email        string
	passwordHash []byte
}

// The fixed credential list. Hashes are computed once at startup.
var (
	allowedUsers     []User
	allowedUsersOnce sync.Once
)

func loadAllowedUsers() {
	seed := []struct {
		uid, name, email, password string
	}{
		{"lic-garcia", "Lic. Elena García", "egarcia@despacho.app", "despacho2024"},
		{"lic-mendoza", "Lic. Raúl Mendoza", "rmendoza@despacho.app", "despacho2024"},
		{"admin", "Administración", "admin@despacho.app", "cambia-esta-clave"},
	}

	for _, u := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), BcryptCost)
		if err != nil {
			log.Printf("[WARNING] Failed to hash credentials for %s: %v", u.email, err)
			continue
		}
		allowedUsers = append(allowedUsers, User{
			UID:          u.uid,
			Name:         u.name,
			Email:        u.email,
			passwordHash: hash,
		})
	}
}

// Authenticate checks the credentials against the allow-list
func Authenticate(email, password string) (*User, error) {
	allowedUsersOnce.Do(loadAllowedUsers)

	for i := range allowedUsers {
		if strings.EqualFold(allowedUsers[i].Email, email) {
			if bcrypt.CompareHashAndPassword(allowedUsers[i].passwordHash, []byte(password)) == nil {
				user := allowedUsers[i]
				return &user, nil
			}
			return nil, ErrInvalidCredentials
		}
	}
	return nil, ErrInvalidCredentials
}

// Session is an in-memory authenticated session
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
}

// SessionService keeps active sessions in memory. Sessions do not
// survive a restart; the allow-list makes re-login cheap.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionService() *SessionService {
	return &SessionService{sessions: map[string]*Session{}}
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Create opens a session for an authenticated user
func (s *SessionService) Create(user *User) (*Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &Session{
		Token:     token,
		User:      *user,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session, nil
}

// Validate returns the session for a token if it is still valid
func (s *SessionService) Validate(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionExpired
	}
	if time.Now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Destroy removes a session. Missing tokens are ignored.
func (s *SessionService) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanupExpired drops expired sessions and returns how many were removed
func (s *SessionService) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
