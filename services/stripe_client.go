package services

import (
	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/account"
	"github.com/stripe/stripe-go/v80/accountlink"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/refund"
	"github.com/stripe/stripe-go/v80/transfer"
	"github.com/stripe/stripe-go/v80/webhook"
)

// IntentRequest is everything needed to open a charge attempt with the
// gateway. Amount is in minor currency units.
type IntentRequest struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	ReturnURL       string
	Metadata        map[string]string
	Shipping        *models.Address
}

// PaymentGateway is the outbound surface of the payment provider. Services
// depend on this interface; StripeService is the real implementation.
type PaymentGateway interface {
	CreatePaymentIntent(req IntentRequest) (string, error)
	CreateTransfer(amount int64, currency, destination, transferGroup, idempotencyKey string) (string, error)
	CreateRefund(paymentIntentID string) error
	CreateExpressAccount() (string, error)
	CreateAccountLink(accountID, refreshURL, returnURL string) (string, error)
	AccountDetailsSubmitted(accountID string) (bool, error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
	SiteURL    string
}

func NewStripeService(secretKey, webhookKey, siteURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey, SiteURL: siteURL}
}

func (s *StripeService) CreatePaymentIntent(req IntentRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethod:      stripe.String(req.PaymentMethodID),
		ConfirmationMethod: stripe.String("manual"),
		Confirm:            stripe.Bool(true),
		ReturnURL:          stripe.String(req.ReturnURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if addr := req.Shipping; addr != nil {
		shipping := &stripe.ShippingDetailsParams{
			Name: stripe.String(addr.FirstName + " " + addr.LastName),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(addr.AddressLine1),
				City:       stripe.String(addr.City),
				State:      stripe.String(addr.State),
				PostalCode: stripe.String(addr.PostalCode),
				Country:    stripe.String("GB"),
			},
		}
		if addr.AddressLine2 != nil {
			shipping.Address.Line2 = stripe.String(*addr.AddressLine2)
		}
		if addr.PhoneNumber != nil {
			shipping.Phone = stripe.String(*addr.PhoneNumber)
		}
		params.Shipping = shipping
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// CreateTransfer moves funds to a connected account. The idempotency key makes
// a retried call return the original transfer instead of moving funds again.
func (s *StripeService) CreateTransfer(amount int64, currency, destination, transferGroup, idempotencyKey string) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		Destination:   stripe.String(destination),
		TransferGroup: stripe.String(transferGroup),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	tr, err := transfer.New(params)
	if err != nil {
		return "", err
	}
	return tr.ID, nil
}

func (s *StripeService) CreateRefund(paymentIntentID string) error {
	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	})
	return err
}

// CreateExpressAccount provisions a GB express account for a seller and
// returns its id.
func (s *StripeService) CreateExpressAccount() (string, error) {
	params := &stripe.AccountParams{
		Country:      stripe.String("GB"),
		Type:         stripe.String("express"),
		BusinessType: stripe.String("individual"),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			URL:                stripe.String(s.SiteURL),
			ProductDescription: stripe.String("Selling fishing equipment on Sell Your Tackle."),
			MCC:                stripe.String("5941"),
		},
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	acct, err := account.New(params)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

func (s *StripeService) CreateAccountLink(accountID, refreshURL, returnURL string) (string, error) {
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (s *StripeService) AccountDetailsSubmitted(accountID string) (bool, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return false, err
	}
	return acct.DetailsSubmitted, nil
}

// ConstructEvent verifies the signature header against the shared secret and
// decodes the event. Callers hold the raw payload so it can be logged even
// when verification fails.
func (s *StripeService) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
