package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/shopfront/lib/myerrors"
)

// fakeVerifier accepts tokens of the form "uid|email|name". It backs
// local development where no auth backend is configured.
type fakeVerifier struct{}

func NewFakeVerifier() TokenVerifier {
	return fakeVerifier{}
}

func (v fakeVerifier) Verify(c context.Context, idToken string) (Identity, error) {
	parts := strings.Split(idToken, "|")
	if len(parts) != 3 || parts[0] == "" {
		return Identity{}, myerrors.NewAuthenticationError(fmt.Errorf("malformed id-token"))
	}

	return Identity{
		UID:         parts[0],
		Email:       parts[1],
		DisplayName: parts[2],
	}, nil
}
