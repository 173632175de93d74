package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/MarcGrol/shopfront/lib/myerrors"
)

//go:generate mockgen -source=emailer.go -package notification -destination emailer_mock.go Emailer
type Emailer interface {
	Send(c context.Context, toName string, toAddress string, subject string, body string) error
}

type sendgridEmailer struct {
	apiKey      string
	fromName    string
	fromAddress string
}

func NewSendgridEmailer(apiKey string, fromName string, fromAddress string) Emailer {
	return &sendgridEmailer{
		apiKey:      apiKey,
		fromName:    fromName,
		fromAddress: fromAddress,
	}
}

func (e *sendgridEmailer) Send(c context.Context, toName string, toAddress string, subject string, body string) error {
	if toAddress == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing to-address"))
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(e.fromName, e.fromAddress),
		subject,
		mail.NewEmail(toName, toAddress),
		body,
		fmt.Sprintf("<pre>%s</pre>", body))

	client := sendgrid.NewSendClient(e.apiKey)
	resp, err := client.SendWithContext(c, message)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error sending mail to %s: %s", toAddress, err))
	}
	if resp.StatusCode >= 400 {
		return myerrors.NewUnavailableError(fmt.Errorf("error sending mail to %s: status %d: %s",
			toAddress, resp.StatusCode, resp.Body))
	}

	return nil
}
