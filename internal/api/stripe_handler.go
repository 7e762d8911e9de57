package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	httperrors "equiprent/internal/errors"
	"equiprent/internal/service"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeWebhookHandler struct {
	WebhookSecret  string
	FallbackSecret string
	paymentService *service.PaymentService
}

func NewStripeWebhookHandler(webhookSecret, fallbackSecret string, paymentService *service.PaymentService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret:  webhookSecret,
		FallbackSecret: fallbackSecret,
		paymentService: paymentService,
	}
}

// HandleWebhook is the at-least-once settlement endpoint. The signature check
// is the only authentication here; a failed check rejects the delivery with
// no mutation. Write failures return 500 so Stripe redelivers, which is safe
// because every mutation downstream is idempotent.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil && h.FallbackSecret != "" {
		// Local replay tooling signs with its own secret.
		event, err = webhook.ConstructEvent(payload, sigHeader, h.FallbackSecret)
	}
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("No session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		err := h.paymentService.HandleCheckoutCompleted(sess.Metadata["rental_id"], sess.ID, sess.AmountTotal)
		if err != nil {
			log.Printf("Error settling completed session %s: %v", sess.ID, err)
			// State conflicts are not retryable; only write failures get a
			// 500 so Stripe redelivers.
			var httpErr *httperrors.HTTPError
			if errors.As(err, &httpErr) {
				w.WriteHeader(httpErr.Code)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		err := h.paymentService.HandleCheckoutExpired(sess.Metadata["rental_id"], sess.ID)
		if err != nil {
			log.Printf("Error releasing expired session %s: %v", sess.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
