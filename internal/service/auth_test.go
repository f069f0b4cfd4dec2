package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
	"github.com/ecstudy/shopctl/internal/session"
)

func authResponse(role model.Role) map[string]any {
	return map[string]any{
		"token": "tok-123",
		"user":  map[string]any{"id": "u1", "username": "alice", "email": "a@example.com", "role": role},
	}
}

func TestLogin_StoresSessionInChosenTier(t *testing.T) {
	doer := &fakeDoer{
		post: func(path string, body, out any) error {
			setOut(out, authResponse(model.RoleCustomer))
			return nil
		},
	}
	sessions := emptySessions()
	svc := NewAuthService(doer, sessions, nil)

	out, err := svc.Login(context.Background(), "a@example.com", "pw", true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Token != "tok-123" {
		t.Fatalf("token = %q", out.Token)
	}
	if sessions.Token() != "tok-123" {
		t.Fatalf("session not stored")
	}
	if u := sessions.StoredUser(); u == nil || u.Username != "alice" {
		t.Fatalf("user not cached: %+v", u)
	}
	if got := LandingSurface(&out.User); got != SurfaceStorefront {
		t.Fatalf("landing = %q, want storefront", got)
	}
}

func TestLogin_AdminLandsOnAdminSurface(t *testing.T) {
	doer := &fakeDoer{
		post: func(path string, body, out any) error {
			setOut(out, authResponse(model.RoleAdmin))
			return nil
		},
	}
	svc := NewAuthService(doer, emptySessions(), nil)
	out, err := svc.Login(context.Background(), "a@example.com", "pw", false)
	if err != nil {
		t.Fatal(err)
	}
	if got := LandingSurface(&out.User); got != SurfaceAdmin {
		t.Fatalf("landing = %q, want admin", got)
	}
}

func TestLogin_TierSwitchClearsPreviousSession(t *testing.T) {
	doer := &fakeDoer{
		post: func(path string, body, out any) error {
			setOut(out, authResponse(model.RoleCustomer))
			return nil
		},
	}
	rem, eph := session.NewMemKV(), session.NewMemKV()
	sessions := session.New(rem, eph, nil)
	svc := NewAuthService(doer, sessions, nil)

	if _, err := svc.Login(context.Background(), "a@example.com", "pw", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(context.Background(), "a@example.com", "pw", false); err != nil {
		t.Fatal(err)
	}
	// the remembered tier was cleared before the ephemeral login stored
	if _, ok := rem.Get("token"); ok {
		t.Fatal("stale remembered tier survived the switch")
	}
	if sessions.Token() != "tok-123" {
		t.Fatal("ephemeral session missing after switch")
	}
}

func TestLogin_ServerMessagePassesThroughVerbatim(t *testing.T) {
	doer := &fakeDoer{
		post: func(string, any, any) error { return errors.New("wrong email or password") },
	}
	sessions := emptySessions()
	svc := NewAuthService(doer, sessions, nil)

	_, err := svc.Login(context.Background(), "a@example.com", "bad", false)
	if err == nil || err.Error() != "wrong email or password" {
		t.Fatalf("err = %v", err)
	}
	if sessions.IsAuthenticated() {
		t.Fatal("failed login must not store a session")
	}
}

func TestLogin_EmptyCredentialsNeverReachNetwork(t *testing.T) {
	doer := &fakeDoer{}
	svc := NewAuthService(doer, emptySessions(), nil)
	if _, err := svc.Login(context.Background(), "", "", false); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(doer.calls) != 0 {
		t.Fatalf("calls = %v", doer.calls)
	}
}

func TestRegister_StoresWhenServerReturnsToken(t *testing.T) {
	doer := &fakeDoer{
		post: func(path string, body, out any) error {
			setOut(out, authResponse(model.RoleCustomer))
			return nil
		},
	}
	sessions := emptySessions()
	svc := NewAuthService(doer, sessions, nil)

	in := RegisterInput{Username: "alice", Email: "a@example.com", Password: "pw"}
	if _, err := svc.Register(context.Background(), in, false); err != nil {
		t.Fatal(err)
	}
	if !sessions.IsAuthenticated() {
		t.Fatal("register with token must log the user in")
	}
}

func TestRegister_NoTokenNoSession(t *testing.T) {
	doer := &fakeDoer{
		post: func(path string, body, out any) error {
			setOut(out, map[string]any{"user": map[string]any{"id": "u1"}})
			return nil
		},
	}
	sessions := emptySessions()
	svc := NewAuthService(doer, sessions, nil)

	in := RegisterInput{Username: "alice", Email: "a@example.com", Password: "pw"}
	if _, err := svc.Register(context.Background(), in, false); err != nil {
		t.Fatal(err)
	}
	if sessions.IsAuthenticated() {
		t.Fatal("no token in the response, nothing to store")
	}
}

func TestLogout_ClearsLocallyEvenWhenServerFails(t *testing.T) {
	doer := &fakeDoer{
		post: func(string, any, any) error { return errors.New("network down") },
	}
	sessions := emptySessions()
	if err := sessions.StoreAuth("tok", &model.User{ID: "u1"}, false); err != nil {
		t.Fatal(err)
	}
	svc := NewAuthService(doer, sessions, nil)

	svc.Logout(context.Background())
	if sessions.IsAuthenticated() || sessions.StoredUser() != nil {
		t.Fatal("logout must clear local state unconditionally")
	}
}

func TestPasswordFlows_NoSessionInteraction(t *testing.T) {
	doer := &fakeDoer{}
	sessions := emptySessions()
	if err := sessions.StoreAuth("tok", &model.User{ID: "u1"}, false); err != nil {
		t.Fatal(err)
	}
	svc := NewAuthService(doer, sessions, nil)

	if err := svc.ForgotPassword(context.Background(), "a@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetPassword(context.Background(), "reset-tok", "newpw"); err != nil {
		t.Fatal(err)
	}
	if !sessions.IsAuthenticated() {
		t.Fatal("password flows must not touch the session store")
	}
}
