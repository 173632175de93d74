package session

import "context"

// Identity describes the signed-in shopper as resolved by the auth provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Transition is delivered to subscribers on every identity change,
// including the initial resolution at startup.
type Transition struct {
	Previous *Identity
	Current  *Identity
}

func (t Transition) IsSignIn() bool {
	return t.Previous == nil && t.Current != nil
}

func (t Transition) IsSignOut() bool {
	return t.Previous != nil && t.Current == nil
}

// Observer is the one canonical subscription point for session state.
// Consumers get it injected instead of polling the auth provider themselves.
type Observer interface {
	Current(c context.Context) (Identity, bool)
	Subscribe(fn func(c context.Context, t Transition)) func()
}

//go:generate mockgen -source=api.go -package session -destination verifier_mock.go TokenVerifier
type TokenVerifier interface {
	Verify(c context.Context, idToken string) (Identity, error)
}
