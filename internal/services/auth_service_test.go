package services_test

import (
	"errors"
	"testing"

	"tambour/internal/repos"
	"tambour/internal/services"
)

func TestAuth_LoginAndParse(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db), "test-secret")

	u, tok, err := svc.Login("admin@tambour.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != "ADMIN" || tok == "" {
		t.Fatalf("bad login result: role=%s token=%q", u.Role, tok)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != u.ID || claims.Role != "ADMIN" {
		t.Fatalf("claims don't match the user: %+v", claims)
	}
}

func TestAuth_BadCredentials(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db), "test-secret")

	if _, _, err := svc.Login("admin@tambour.test", "wrong-password"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for wrong password, got %v", err)
	}
	if _, _, err := svc.Login("nobody@tambour.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for unknown email, got %v", err)
	}
}

func TestAuth_RejectsForeignToken(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db), "test-secret")
	other := services.NewAuthService(repos.NewUserRepo(db), "another-secret")

	_, tok, err := other.Login("admin@tambour.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Parse(tok); !errors.Is(err, services.ErrBadToken) {
		t.Fatalf("token signed with another secret must fail, got %v", err)
	}
	if _, err := svc.Parse("garbage.token.value"); !errors.Is(err, services.ErrBadToken) {
		t.Fatalf("want ErrBadToken, got %v", err)
	}
}
