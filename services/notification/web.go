package notification

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopfront/lib/mycontext"
	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypubsub"
	"github.com/MarcGrol/shopfront/services/checkoutevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(emailer Emailer, pubsub mypubsub.PubSub, logger mylog.Logger) *webService {
	return &webService{
		service: newService(emailer, pubsub, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/notification/event", s.handleEventEnvelope()).Methods("POST")

	return s.service.Subscribe(c)
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
