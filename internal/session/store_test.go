package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ecstudy/shopctl/internal/model"
)

func newTestStore(t *testing.T) (*Store, *MemKV, *MemKV) {
	t.Helper()
	rem, eph := NewMemKV(), NewMemKV()
	return New(rem, eph, nil), rem, eph
}

func user() *model.User {
	return &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: model.RoleCustomer}
}

func TestStoreAuth_TierSelection(t *testing.T) {
	s, rem, eph := newTestStore(t)

	if err := s.StoreAuth("tok-eph", user(), false); err != nil {
		t.Fatalf("StoreAuth ephemeral: %v", err)
	}
	if _, ok := rem.Get("token"); ok {
		t.Fatalf("remembered tier must stay untouched")
	}
	if got := s.Token(); got != "tok-eph" {
		t.Fatalf("Token() = %q, want tok-eph", got)
	}

	s.ClearAuth()
	if err := s.StoreAuth("tok-rem", user(), true); err != nil {
		t.Fatalf("StoreAuth remembered: %v", err)
	}
	if _, ok := eph.Get("token"); ok {
		t.Fatalf("ephemeral tier must stay untouched")
	}
	if got := s.Token(); got != "tok-rem" {
		t.Fatalf("Token() = %q, want tok-rem", got)
	}
	if _, ok := rem.Get("token_expiry"); !ok {
		t.Fatalf("remembered tier must carry an expiry")
	}
}

func TestToken_RememberedWinsOverEphemeral(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := s.StoreAuth("tok-eph", user(), false); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreAuth("tok-rem", user(), true); err != nil {
		t.Fatal(err)
	}
	if got := s.Token(); got != "tok-rem" {
		t.Fatalf("remembered tier must be consulted first, got %q", got)
	}
}

func TestToken_ExpiryClearsWholeTier(t *testing.T) {
	s, rem, _ := newTestStore(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.StoreAuth("abc", user(), true); err != nil {
		t.Fatal(err)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("fresh remembered session must authenticate")
	}

	// advance past the one-hour window
	now = now.Add(RememberWindow + time.Minute)

	if got := s.Token(); got != "" {
		t.Fatalf("expired token must read as absent, got %q", got)
	}
	if s.IsAuthenticated() {
		t.Fatalf("IsAuthenticated must be false after expiry")
	}
	for _, key := range []string{"token", "user", "token_expiry"} {
		if _, ok := rem.Get(key); ok {
			t.Fatalf("expired tier must be wiped, %s survived", key)
		}
	}
	if u := s.StoredUser(); u != nil {
		t.Fatalf("stored user must not outlive its token, got %+v", u)
	}
}

func TestStoredUser_ValidatesExpiryWithoutPriorTokenCall(t *testing.T) {
	s, rem, _ := newTestStore(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.StoreAuth("abc", user(), true); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)

	// user read first: expiry must still be enforced
	if u := s.StoredUser(); u != nil {
		t.Fatalf("StoredUser must validate expiry, got %+v", u)
	}
	if _, ok := rem.Get("user"); ok {
		t.Fatalf("expired tier must be wiped on the user read path too")
	}
}

func TestStoreAuth_UsesJWTExpClaim(t *testing.T) {
	s, rem, _ := newTestStore(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	exp := now.Add(15 * time.Minute)
	claims := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StoreAuth(tok, user(), true); err != nil {
		t.Fatal(err)
	}

	raw, ok := rem.Get("token_expiry")
	if !ok {
		t.Fatalf("expiry missing")
	}
	got, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("expiry = %v, want claim exp %v", got, exp)
	}

	// the claim governs: token dies at exp, not at now+1h
	now = exp.Add(time.Second)
	if s.IsAuthenticated() {
		t.Fatalf("token must expire at the claim's exp")
	}
}

func TestClearAuth_Idempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := s.StoreAuth("a", user(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.StoreAuth("b", user(), false); err != nil {
		t.Fatal(err)
	}
	s.ClearAuth()
	s.ClearAuth()
	if s.IsAuthenticated() || s.StoredUser() != nil {
		t.Fatalf("both tiers must be empty after ClearAuth")
	}
}

func TestUpdateCachedUser_TouchesLiveTierOnly(t *testing.T) {
	s, _, eph := newTestStore(t)
	if err := s.StoreAuth("tok", user(), false); err != nil {
		t.Fatal(err)
	}
	u := user()
	u.Address = "12 Elm St"
	if err := s.UpdateCachedUser(u); err != nil {
		t.Fatal(err)
	}
	got := s.StoredUser()
	if got == nil || got.Address != "12 Elm St" {
		t.Fatalf("cached user not updated: %+v", got)
	}
	if _, ok := eph.Get("user"); !ok {
		t.Fatalf("ephemeral tier should hold the cache")
	}
}

func TestSession_Snapshot(t *testing.T) {
	s, _, _ := newTestStore(t)
	if s.Session() != nil {
		t.Fatalf("no session expected before login")
	}

	if err := s.StoreAuth("tok", user(), true); err != nil {
		t.Fatal(err)
	}
	sess := s.Session()
	if sess == nil || sess.Token != "tok" || sess.User == nil {
		t.Fatalf("session = %+v", sess)
	}
	if sess.ExpiresAt.IsZero() {
		t.Fatalf("remembered session must carry an expiry")
	}

	s.ClearAuth()
	if err := s.StoreAuth("tok2", user(), false); err != nil {
		t.Fatal(err)
	}
	sess = s.Session()
	if sess == nil || !sess.ExpiresAt.IsZero() {
		t.Fatalf("ephemeral session must have zero expiry, got %+v", sess)
	}
}

func TestFileKV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	kv := NewFileKV(path)

	if err := kv.Set("token", "abc"); err != nil {
		t.Fatal(err)
	}
	if v, ok := kv.Get("token"); !ok || v != "abc" {
		t.Fatalf("Get = %q/%v", v, ok)
	}

	// a fresh handle over the same file sees the data
	if v, ok := NewFileKV(path).Get("token"); !ok || v != "abc" {
		t.Fatalf("persisted Get = %q/%v", v, ok)
	}

	if err := kv.Delete("token"); err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.Get("token"); ok {
		t.Fatalf("deleted key still readable")
	}
}
