// Package session owns the bearer token and cached user across two storage
// tiers: a remembered tier that survives restarts and carries an explicit
// expiry, and an ephemeral tier scoped to the current session.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/model"
)

// RememberWindow is the fixed remembered-tier lifetime used when the access
// token carries no exp claim.
const RememberWindow = time.Hour

const (
	keyToken  = "token"
	keyUser   = "user"
	keyExpiry = "token_expiry"
)

// Store reads the remembered tier before the ephemeral one and wipes the
// remembered tier wholesale once its expiry has passed. At most one tier
// holds live data from this client's point of view; callers switching tiers
// clear first.
type Store struct {
	remembered KV
	ephemeral  KV
	now        func() time.Time
	log        *zap.Logger
}

// New builds a store over the two tiers. log may be nil.
func New(remembered, ephemeral KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{remembered: remembered, ephemeral: ephemeral, now: time.Now, log: log}
}

// DefaultPaths returns the production tier files: the remembered tier under
// the XDG config dir and the ephemeral tier under the OS temp dir.
func DefaultPaths() (remembered, ephemeral string) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "shopctl", "session.json"),
		filepath.Join(os.TempDir(), "shopctl-session.json")
}

// StoreAuth writes token and user as a unit to the chosen tier. The
// remembered tier additionally records an expiry: the token's exp claim when
// present, otherwise now plus RememberWindow. The other tier is left alone.
func (s *Store) StoreAuth(token string, user *model.User, remember bool) error {
	tier := s.ephemeral
	if remember {
		tier = s.remembered
	}
	if err := tier.Set(keyToken, token); err != nil {
		return err
	}
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := tier.Set(keyUser, string(b)); err != nil {
			return err
		}
	}
	if remember {
		exp := s.tokenExpiry(token)
		if err := tier.Set(keyExpiry, exp.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// client has no key and only needs the timestamp for bookkeeping.
func (s *Store) tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return s.now().Add(RememberWindow)
}

// rememberedValid reports whether the remembered tier holds a live token.
// An expired tier is wiped entirely as a side effect, so a stale user can
// never be read after its paired token lapsed.
func (s *Store) rememberedValid() bool {
	tok, ok := s.remembered.Get(keyToken)
	if !ok || tok == "" {
		return false
	}
	raw, ok := s.remembered.Get(keyExpiry)
	if ok {
		exp, err := time.Parse(time.RFC3339, raw)
		if err == nil && s.now().After(exp) {
			s.log.Info("remembered session expired, clearing tier")
			s.wipe(s.remembered)
			return false
		}
	}
	return true
}

// Token returns the current bearer token, remembered tier first, or "".
func (s *Store) Token() string {
	if s.rememberedValid() {
		tok, _ := s.remembered.Get(keyToken)
		return tok
	}
	tok, _ := s.ephemeral.Get(keyToken)
	return tok
}

// StoredUser returns the cached user with the same tier precedence and the
// same expiry validation as Token.
func (s *Store) StoredUser() *model.User {
	var raw string
	if s.rememberedValid() {
		raw, _ = s.remembered.Get(keyUser)
	} else {
		raw, _ = s.ephemeral.Get(keyUser)
	}
	if raw == "" {
		return nil
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// UpdateCachedUser overwrites the cached copy in whichever tier currently
// holds the session. Cache only: no server call is made.
func (s *Store) UpdateCachedUser(user *model.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	tier := s.ephemeral
	if s.rememberedValid() {
		tier = s.remembered
	}
	return tier.Set(keyUser, string(b))
}

// ClearAuth wipes token, user, and expiry from both tiers. Idempotent.
func (s *Store) ClearAuth() {
	s.wipe(s.remembered)
	s.wipe(s.ephemeral)
}

func (s *Store) wipe(tier KV) {
	_ = tier.Delete(keyToken)
	_ = tier.Delete(keyUser)
	_ = tier.Delete(keyExpiry)
}

// Session returns a snapshot of the live session, or nil when no tier holds
// one. ExpiresAt is zero for an ephemeral session.
func (s *Store) Session() *model.Session {
	tier := s.ephemeral
	if s.rememberedValid() {
		tier = s.remembered
	}
	tok, _ := tier.Get(keyToken)
	if tok == "" {
		return nil
	}
	sess := &model.Session{Token: tok, User: s.StoredUser()}
	if raw, ok := tier.Get(keyExpiry); ok {
		if exp, err := time.Parse(time.RFC3339, raw); err == nil {
			sess.ExpiresAt = exp
		}
	}
	return sess
}

// IsAuthenticated reports whether any tier holds a live token.
func (s *Store) IsAuthenticated() bool { return s.Token() != "" }

// IsAdmin reports whether the cached user has the admin role.
func (s *Store) IsAdmin() bool { return s.StoredUser().IsAdmin() }
