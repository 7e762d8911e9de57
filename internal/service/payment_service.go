package service

import (
	"database/sql"
	"errors"
	"log"
	"math"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	httperrors "equiprent/internal/errors"
	"equiprent/internal/repository"

	"github.com/google/uuid"
)

type PaymentService struct {
	Rentals   *repository.RentalRepository
	Payments  *repository.PaymentRepository
	Users     *repository.UserRepository
	Equipment *repository.EquipmentRepository
	stripe    StripeClient
	sender    *SenderService
	baseURL   string
}

func NewPaymentService(rentals *repository.RentalRepository, payments *repository.PaymentRepository,
	users *repository.UserRepository, equipment *repository.EquipmentRepository,
	stripeClient StripeClient, sender *SenderService, baseURL string) *PaymentService {
	return &PaymentService{
		Rentals:   rentals,
		Payments:  payments,
		Users:     users,
		Equipment: equipment,
		stripe:    stripeClient,
		sender:    sender,
		baseURL:   baseURL,
	}
}

// CreateCheckoutSession opens a hosted checkout for an approved rental. The
// charge amount always comes from the stored rental total, never from the
// client. The session id is persisted only after Stripe accepts the session,
// and only while the rental is still approved.
func (s *PaymentService) CreateCheckoutSession(user auth.AuthUser, rentalID string) (*entities.CheckoutSessionResponse, error) {
	if rentalID == "" {
		return nil, httperrors.ErrValidation("rental_id is required")
	}

	rental, err := s.Rentals.GetRentalByID(rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.ErrNotFound("rental not found")
		}
		return nil, err
	}
	if rental.RenterID != user.ID {
		return nil, httperrors.ErrForbidden("only the renter can pay for this rental")
	}
	if rental.Status != db.StatusApproved {
		return nil, httperrors.ErrInvalidState("rental must be approved before payment")
	}

	owner, err := s.Users.GetUserByID(rental.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.StripeAccountID == "" {
		return nil, httperrors.ErrInvalidState("vendor has not completed payment onboarding")
	}

	grossCents := int64(math.Round(rental.TotalValue * 100))
	if grossCents <= 0 {
		return nil, httperrors.ErrInvalidState("rental total must be positive")
	}
	feeCents, _ := ComputeSplit(grossCents)

	sessionID, sessionURL, err := s.stripe.CreateCheckoutSession(CheckoutParams{
		AmountCents:        grossCents,
		FeeCents:           feeCents,
		Description:        "Equipment Rental",
		CustomerEmail:      user.Email,
		DestinationAccount: owner.StripeAccountID,
		SuccessURL:         s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.baseURL + "/checkout/cancel",
		RentalID:           rental.ID,
		UserID:             user.ID,
	})
	if err != nil {
		log.Printf("Stripe error creating checkout session for rental %s: %v", rental.ID, err)
		return nil, httperrors.ErrUpstream("failed to create checkout session")
	}

	ok, err := s.Rentals.SetStripeSessionID(rental.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent transition won; the orphaned session simply expires.
		return nil, httperrors.ErrInvalidState("rental is no longer approved")
	}

	return &entities.CheckoutSessionResponse{SessionID: sessionID, URL: sessionURL}, nil
}

// HandleCheckoutCompleted settles a paid checkout session: the rental goes to
// completed and exactly one payment row is recorded for the session. Safe to
// replay on webhook redelivery. Write failures are accumulated so every
// independent step still runs and a retry can finish the rest.
func (s *PaymentService) HandleCheckoutCompleted(rentalID, sessionID string, amountTotalCents int64) error {
	rental, err := s.resolveRental(rentalID, sessionID)
	if err != nil {
		return err
	}
	if rental == nil {
		log.Printf("No rental resolved for completed session %s, ignoring", sessionID)
		return nil
	}

	var errs []error
	ok, err := s.Rentals.CompleteRental(rental.ID, sessionID)
	if err != nil {
		errs = append(errs, err)
	} else if !ok {
		// The rental left the payable states while the session was open
		// (e.g. the renter cancelled and then paid). Record nothing; the
		// charge needs a manual refund.
		log.Printf("Rental %s is %s, refusing to settle session %s", rental.ID, rental.Status, sessionID)
		return httperrors.ErrInvalidState("rental is not in a payable state")
	}

	existing, err := s.Payments.GetPaymentBySessionID(sessionID)
	if err != nil {
		errs = append(errs, err)
	} else if existing == nil {
		payment := &db.Payment{
			ID:              uuid.NewString(),
			RentalID:        rental.ID,
			Amount:          float64(amountTotalCents) / 100,
			Status:          db.StatusCompleted,
			StripeSessionID: sessionID,
		}
		if err := s.Payments.CreatePayment(payment); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.notifyRenter(rental, db.StatusCompleted)
	return nil
}

// HandleCheckoutExpired releases the expired session so the renter can retry.
// The rental stays approved; expiry never rejects it.
func (s *PaymentService) HandleCheckoutExpired(rentalID, sessionID string) error {
	rental, err := s.resolveRental(rentalID, sessionID)
	if err != nil {
		return err
	}
	if rental == nil {
		log.Printf("No rental resolved for expired session %s, ignoring", sessionID)
		return nil
	}
	return s.Rentals.ClearExpiredSession(rental.ID)
}

// resolveRental finds the rental for a webhook event, preferring the
// metadata id and falling back to the stored session id (replay tooling can
// drop metadata). Returns (nil, nil) when nothing matches.
func (s *PaymentService) resolveRental(rentalID, sessionID string) (*db.Rental, error) {
	if rentalID != "" {
		rental, err := s.Rentals.GetRentalByID(rentalID)
		if err == nil {
			return rental, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	if sessionID == "" {
		return nil, nil
	}
	rental, err := s.Rentals.GetRentalByStripeSessionID(sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rental, nil
}

// CreateConnectAccount links (or reuses) the vendor's connected account and
// returns a fresh onboarding link.
func (s *PaymentService) CreateConnectAccount(user auth.AuthUser) (*entities.ConnectAccountResponse, error) {
	if user.Role != db.RoleVendor {
		return nil, httperrors.ErrForbidden("only vendors can onboard for payouts")
	}

	vendor, err := s.Users.GetUserByID(user.ID)
	if err != nil {
		return nil, err
	}

	accountID := vendor.StripeAccountID
	if accountID == "" {
		accountID, err = s.stripe.CreateConnectedAccount(vendor.Email)
		if err != nil {
			log.Printf("Stripe error creating connected account for user %s: %v", user.ID, err)
			return nil, httperrors.ErrUpstream("failed to create payment account")
		}
		if err := s.Users.UpdateStripeAccountID(user.ID, accountID); err != nil {
			return nil, err
		}
	}

	linkURL, err := s.stripe.CreateAccountLink(accountID,
		s.baseURL+"/dashboard/connect/refresh", s.baseURL+"/dashboard")
	if err != nil {
		log.Printf("Stripe error creating account link for user %s: %v", user.ID, err)
		return nil, httperrors.ErrUpstream("failed to create onboarding link")
	}

	return &entities.ConnectAccountResponse{AccountID: accountID, OnboardingURL: linkURL}, nil
}

// GetVendorEarnings totals the payments settled against the caller's rentals.
func (s *PaymentService) GetVendorEarnings(user auth.AuthUser) (*entities.EarningsResponse, error) {
	rentalIDs, err := s.Rentals.ListRentalIDsByOwner(user.ID)
	if err != nil {
		return nil, err
	}

	response := &entities.EarningsResponse{Payments: []entities.PaymentResponse{}}
	if len(rentalIDs) == 0 {
		return response, nil
	}

	payments, err := s.Payments.ListPaymentsByRentalIDs(rentalIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		response.Total += p.Amount
		response.Payments = append(response.Payments, entities.PaymentResponse{
			ID:              p.ID,
			RentalID:        p.RentalID,
			Amount:          p.Amount,
			Status:          p.Status,
			StripeSessionID: p.StripeSessionID,
			CreatedAt:       p.CreatedAt,
		})
	}
	return response, nil
}

func (s *PaymentService) notifyRenter(rental *db.Rental, status string) {
	if s.sender == nil {
		return
	}
	renter, err := s.Users.GetUserByID(rental.RenterID)
	if err != nil {
		log.Printf("Could not load renter %s for notification: %v", rental.RenterID, err)
		return
	}
	equipmentName := ""
	if equipment, err := s.Equipment.GetEquipmentByID(rental.EquipmentID); err == nil {
		equipmentName = equipment.Name
	}
	data := BuildRentalEmailData(renter.Name, rental.Code, equipmentName, status,
		rental.StartDate, rental.EndDate, rental.TotalValue)
	s.sender.NotifyRentalStatus(renter.Email, renter.Name, renter.Phone, data)
}
