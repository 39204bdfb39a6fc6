package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"salonpro-retention/logger"
)

var ErrNotConfigured = errors.New("messaging provider not configured")

const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Delivery describes how a message went out.
type Delivery struct {
	Channel string
	SID     string
}

// Messenger sends a text message to a client's phone.
type Messenger interface {
	Send(ctx context.Context, to, body string) (Delivery, error)
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioMessenger struct {
	api            messageAPI
	phoneNumber    string
	whatsAppNumber string
	log            *logger.Logger
}

func NewTwilioMessenger(accountSID, authToken, phoneNumber, whatsAppNumber string, baseLog *logger.Logger) *TwilioMessenger {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioMessenger{
		api:            client.Api,
		phoneNumber:    phoneNumber,
		whatsAppNumber: whatsAppNumber,
		log:            baseLog.With("service", "TwilioMessenger"),
	}
}

// NewMessenger returns a Twilio messenger when credentials are present and a
// messenger that always fails with ErrNotConfigured otherwise.
func NewMessenger(accountSID, authToken, phoneNumber, whatsAppNumber string, baseLog *logger.Logger) Messenger {
	if accountSID == "" || authToken == "" {
		return Unconfigured{}
	}
	return NewTwilioMessenger(accountSID, authToken, phoneNumber, whatsAppNumber, baseLog)
}

// Send uses WhatsApp for E.164 numbers when a WhatsApp sender is configured,
// SMS otherwise.
func (m *TwilioMessenger) Send(ctx context.Context, to, body string) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}

	d := Delivery{Channel: ChannelSMS}
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if strings.HasPrefix(to, "+") && m.whatsAppNumber != "" {
		d.Channel = ChannelWhatsApp
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + m.whatsAppNumber)
	} else {
		params.SetTo(to)
		params.SetFrom(m.phoneNumber)
	}

	resp, err := m.api.CreateMessage(params)
	if err != nil {
		m.log.Warn("send failed", "to", to, "channel", d.Channel, "error", err)
		return d, err
	}
	if resp != nil && resp.Sid != nil {
		d.SID = *resp.Sid
	}
	m.log.Debug("message sent", "to", to, "channel", d.Channel, "sid", d.SID)
	return d, nil
}

type Unconfigured struct{}

func (Unconfigured) Send(context.Context, string, string) (Delivery, error) {
	return Delivery{Channel: ChannelSMS}, ErrNotConfigured
}
