package sms

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Twilio sends texts through the Twilio Messages API.
type Twilio struct {
	api  messageCreator
	from string
}

// NewTwilio creates a Twilio transport sending from the given number.
func NewTwilio(accountSID, authToken, from string) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: client.Api, from: from}
}

// Name returns the transport name.
func (t *Twilio) Name() string { return "Twilio" }

// Send creates a message and returns its SID. The Twilio client has no
// context support, so ctx is only checked before the call.
func (t *Twilio) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)
	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if msg == nil || msg.Sid == nil {
		return "", errors.New("twilio returned no message sid")
	}
	return *msg.Sid, nil
}
