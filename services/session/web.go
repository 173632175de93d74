package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/MarcGrol/shopfront/lib/mycontext"
	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
)

const (
	cookieName = "shopfront_session"
)

type webService struct {
	service *service
	logger  mylog.Logger
	cookies *sessions.CookieStore
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(verifier TokenVerifier, kvStore mykvstore.KVStore, logger mylog.Logger, cookieSecret string) *webService {
	return &webService{
		service: newService(verifier, kvStore, logger),
		logger:  logger,
		cookies: sessions.NewCookieStore([]byte(cookieSecret)),
	}
}

// Observer exposes the canonical subscription point that other services get injected.
func (s *webService) Observer() Observer {
	return s.service
}

// Resolve determines the initial session state. Call it after all
// subscribers have attached, so they see the initial resolution too.
func (s *webService) Resolve(c context.Context) {
	s.service.resolve(c)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/session", s.currentSessionPage()).Methods("GET")
	router.HandleFunc("/api/session", s.signInPage()).Methods("POST")
	router.HandleFunc("/api/session", s.signOutPage()).Methods("DELETE")
}

type sessionResponse struct {
	SignedIn bool
	Identity *Identity `json:",omitempty"`
}

func (s *webService) currentSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		identity, signedIn := s.service.Current(c)
		if !signedIn {
			responseWriter.Write(c, w, http.StatusOK, sessionResponse{SignedIn: false})
			return
		}

		responseWriter.Write(c, w, http.StatusOK, sessionResponse{
			SignedIn: true,
			Identity: &identity,
		})
	}
}

func (s *webService) signInPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		idToken := r.FormValue("idToken")
		if idToken == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing idToken")))
			return
		}

		identity, err := s.service.signIn(c, idToken)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		cookieSession, _ := s.cookies.Get(r, cookieName)
		cookieSession.Values["shopperUID"] = identity.UID
		err = cookieSession.Save(r, w)
		if err != nil {
			s.logger.Log(c, identity.UID, mylog.SeverityWarn, "Error saving session cookie: %s", err)
		}

		responseWriter.Write(c, w, http.StatusOK, sessionResponse{
			SignedIn: true,
			Identity: &identity,
		})
	}
}

func (s *webService) signOutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := s.service.signOut(c)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		cookieSession, _ := s.cookies.Get(r, cookieName)
		cookieSession.Options.MaxAge = -1
		err = cookieSession.Save(r, w)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityWarn, "Error expiring session cookie: %s", err)
		}

		responseWriter.Write(c, w, http.StatusOK, sessionResponse{SignedIn: false})
	}
}
