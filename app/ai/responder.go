package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ComplaintInput carries the complaint fields the responder needs, keeping
// this package independent of the storage layer.
type ComplaintInput struct {
	Title    string
	Text     string
	UserName string
	Category string

	Sentiment      string
	SentimentScore float64
	Urgency        float64
}

// Responder drafts public replies to complaints. Every reply carries a
// discount coupon sized by how bad the complaint is.
type Responder struct {
	client Client
}

func NewResponder(client Client) *Responder {
	return &Responder{client: client}
}

// DiscountFor maps complaint severity to a coupon discount percentage.
func DiscountFor(urgency float64, sentiment string, sentimentScore float64) int {
	if urgency >= 8 || (sentiment == SentimentNegative && sentimentScore <= 3) {
		return 20
	}
	if urgency >= 5 {
		return 15
	}
	return 10
}

// GenerateResponse produces the reply text. The category template supplies
// the base draft; the model personalizes it to the complaint. When the
// model is unavailable or fails, the plain template is the reply, so
// drafting never hard-fails.
func (r *Responder) GenerateResponse(ctx context.Context, in ComplaintInput, couponCode string, discount int) string {
	draft := draftFor(in, couponCode, discount)
	if r.client == nil {
		return draft
	}

	prompt := fmt.Sprintf(responsePromptTemplate, customerName(in.UserName), in.Text, draft)
	text, err := r.client.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Response personalization failed, using template", "error", err)
		return draft
	}

	text = strings.TrimSpace(text)
	// The coupon offer must survive the rewrite verbatim.
	if text == "" || !strings.Contains(text, couponCode) {
		slog.Warn("Model dropped the coupon from the reply, using template")
		return draft
	}
	return text
}

func draftFor(in ComplaintInput, couponCode string, discount int) string {
	template, ok := responseDrafts[strings.ToLower(in.Category)]
	if !ok {
		template = responseDrafts["outros"]
	}
	return fmt.Sprintf(template, customerName(in.UserName), couponCode, discount)
}

func customerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultCustomerName
	}
	// First name only, replies are public.
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
