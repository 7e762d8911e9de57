package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutParams carries everything needed to open a hosted checkout session
// with the vendor transfer attached.
type CheckoutParams struct {
	AmountCents        int64
	FeeCents           int64
	Description        string
	CustomerEmail      string
	DestinationAccount string
	SuccessURL         string
	CancelURL          string
	RentalID           string
	UserID             string
}

// StripeClient is the payment processor surface the services depend on.
// Injected so tests can substitute a stub.
type StripeClient interface {
	CreateCheckoutSession(params CheckoutParams) (sessionID, url string, err error)
	CreateConnectedAccount(email string) (accountID string, err error)
	CreateAccountLink(accountID, refreshURL, returnURL string) (url string, err error)
}

type StripeService struct{}

func NewStripeService() *StripeService {
	return &StripeService{}
}

func (s *StripeService) CreateCheckoutSession(p CheckoutParams) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(p.SuccessURL),
		CancelURL:     stripe.String(p.CancelURL),
		CustomerEmail: stripe.String(p.CustomerEmail),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
		},
	}
	params.AddMetadata("rental_id", p.RentalID)
	params.AddMetadata("user_id", p.UserID)

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("error creating checkout session: %w", err)
	}
	return sess.ID, sess.URL, nil
}

func (s *StripeService) CreateConnectedAccount(email string) (string, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String("US"),
		Email:   stripe.String(email),
	}
	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("error creating connected account: %w", err)
	}
	return acct.ID, nil
}

func (s *StripeService) CreateAccountLink(accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("error creating account link: %w", err)
	}
	return link.URL, nil
}
