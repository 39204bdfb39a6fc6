package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"salonpro-retention/logger"
)

const systemPrompt = `You write short re-engagement text messages for a beauty and wellness business.
Keep the message under 300 characters, warm and personal, with no hashtags or emojis.
Keep any offer exactly as given. Reply with the message text only.`

// MessageContext is what a composer knows about the recipient.
type MessageContext struct {
	ClientName       string
	BusinessName     string
	Template         string
	Offer            string
	HealthStatus     string
	LastVisitDaysAgo int
}

// Composer turns a campaign template into the message a client receives.
type Composer interface {
	Compose(ctx context.Context, mc MessageContext) (string, error)
}

// RenderTemplate fills {{name}}, {{business}} and {{offer}} placeholders.
func RenderTemplate(mc MessageContext) string {
	r := strings.NewReplacer(
		"{{name}}", mc.ClientName,
		"{{business}}", mc.BusinessName,
		"{{offer}}", mc.Offer,
	)
	return r.Replace(mc.Template)
}

// TemplateComposer only renders placeholders.
type TemplateComposer struct{}

func (TemplateComposer) Compose(_ context.Context, mc MessageContext) (string, error) {
	return RenderTemplate(mc), nil
}

type messageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicComposer struct {
	messages messageClient
	model    string
	log      *logger.Logger
}

func NewAnthropicComposer(apiKey, model string, baseLog *logger.Logger) *AnthropicComposer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicComposer{
		messages: &client.Messages,
		model:    model,
		log:      baseLog.With("service", "AnthropicComposer"),
	}
}

// NewComposer returns an Anthropic-backed composer when an API key is set and
// the plain template renderer otherwise.
func NewComposer(apiKey, model string, baseLog *logger.Logger) Composer {
	if apiKey == "" {
		return TemplateComposer{}
	}
	return NewAnthropicComposer(apiKey, model, baseLog)
}

// Compose asks the model to personalize the rendered template. Any failure
// falls back to the rendered template so outreach is never blocked on the
// model.
func (c *AnthropicComposer) Compose(ctx context.Context, mc MessageContext) (string, error) {
	base := RenderTemplate(mc)

	prompt := fmt.Sprintf(
		"Client: %s\nBusiness: %s\nClient status: %s\nDays since last visit: %d\nOffer: %s\n\nTemplate:\n%s",
		mc.ClientName, mc.BusinessName, mc.HealthStatus, mc.LastVisitDaysAgo, mc.Offer, base,
	)
	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 300,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.log.Warn("compose failed, using template", "error", err)
		return base, nil
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	c.log.Warn("no text content in response, using template")
	return base, nil
}
