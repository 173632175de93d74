package session

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/MarcGrol/shopfront/lib/myerrors"
)

type firebaseVerifier struct {
	authClient *firebaseauth.Client
}

// NewFirebaseVerifier verifies id-tokens against the hosted auth provider.
// Credentials are picked up from GOOGLE_APPLICATION_CREDENTIALS.
func NewFirebaseVerifier(c context.Context) (TokenVerifier, error) {
	app, err := firebase.NewApp(c, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating firebase app: %s", err)
	}

	authClient, err := app.Auth(c)
	if err != nil {
		return nil, fmt.Errorf("error creating firebase auth-client: %s", err)
	}

	return &firebaseVerifier{
		authClient: authClient,
	}, nil
}

func (v *firebaseVerifier) Verify(c context.Context, idToken string) (Identity, error) {
	token, err := v.authClient.VerifyIDToken(c, idToken)
	if err != nil {
		return Identity{}, myerrors.NewAuthenticationError(fmt.Errorf("error verifying id-token: %s", err))
	}

	identity := Identity{
		UID: token.UID,
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}

	return identity, nil
}
