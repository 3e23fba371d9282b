package controller

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"
)

type PaymentInput struct {
	LeaseID     uint    `json:"lease_id"`
	Kind        string  `json:"kind"`
	Amount      float64 `json:"amount"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Notes       string  `json:"notes"`
}

// CreateRentPayment opens a Stripe payment intent for a rent or deposit
// collection and records it as pending. The webhook flips it to paid.
func CreateRentPayment(c *fiber.Ctx) error {
	input := new(PaymentInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	claims := currentUser(c)

	var lease model.Lease
	query := database.GetDB().
		Joins("JOIN properties ON properties.id = leases.property_id").
		Preload("Tenant")
	if claims.Role != "manager" {
		query = query.Where("properties.user_id = ?", claims.UserID)
	}
	if err := query.First(&lease, "leases.id = ?", input.LeaseID).Error; err != nil {
		return respondDBError(c, "Lease not found", err)
	}

	if lease.Status != model.LeaseStatusActive && lease.Status != model.LeaseStatusSigned {
		return apperror.Respond(c, apperror.New(apperror.CodeTransitionBlocked, "Payments can only be collected on signed or active leases"))
	}

	kind := model.PaymentKindRent
	if input.Kind == string(model.PaymentKindDeposit) {
		kind = model.PaymentKindDeposit
	}

	amount := input.Amount
	if amount == 0 {
		if kind == model.PaymentKindDeposit {
			amount = lease.SecurityDeposit
		} else {
			amount = lease.MonthlyRent
		}
	}
	if amount <= 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Payment amount must be greater than zero"))
	}

	payment := model.RentPayment{
		LeaseID:  lease.ID,
		TenantID: lease.TenantID,
		Kind:     kind,
		Amount:   amount,
		Status:   model.PaymentStatusPending,
		Notes:    input.Notes,
	}
	if input.PeriodStart != "" {
		start, err := parseDate(input.PeriodStart)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid period_start, expected YYYY-MM-DD"))
		}
		payment.PeriodStart = start
	}
	if input.PeriodEnd != "" {
		end, err := parseDate(input.PeriodEnd)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid period_end, expected YYYY-MM-DD"))
		}
		payment.PeriodEnd = end
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(lease.Tenant.Email),
	}
	params.AddMetadata("lease_id", strconv.FormatUint(uint64(lease.ID), 10))
	params.AddMetadata("kind", string(kind))

	intent, err := paymentintent.New(params)
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodePayment, "Could not create payment intent", err))
	}
	payment.StripePaymentIntentID = intent.ID

	if err := database.GetDB().Create(&payment).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not save payment", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment":       payment,
		"client_secret": intent.ClientSecret,
	})
}

func GetPayments(c *fiber.Ctx) error {
	claims := currentUser(c)

	query := database.GetDB().Model(&model.RentPayment{}).
		Joins("JOIN leases ON leases.id = rent_payments.lease_id").
		Joins("JOIN properties ON properties.id = leases.property_id").
		Preload("Tenant")
	if claims.Role != "manager" {
		query = query.Where("properties.user_id = ?", claims.UserID)
	}
	if leaseID := c.Query("lease"); leaseID != "" {
		query = query.Where("rent_payments.lease_id = ?", leaseID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("rent_payments.status = ?", status)
	}

	var payments []model.RentPayment
	if err := query.Order("rent_payments.created_at DESC").Find(&payments).Error; err != nil {
		return respondDBError(c, "Could not fetch payments", err)
	}

	return c.JSON(payments)
}

func HandleStripeWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid webhook signature"))
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intentData struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &intentData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var payment model.RentPayment
		if err := database.GetDB().
			Where("stripe_payment_intent_id = ?", intentData.ID).
			First(&payment).Error; err != nil {
			log.Printf("webhook for unknown payment intent %s", intentData.ID)
			return c.SendStatus(fiber.StatusOK)
		}

		if event.Type == "payment_intent.succeeded" {
			now := time.Now()
			updates := map[string]interface{}{
				"status":  model.PaymentStatusPaid,
				"paid_at": now,
			}
			if err := database.GetDB().Model(&payment).Updates(updates).Error; err != nil {
				return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update payment", err))
			}
		} else {
			if err := database.GetDB().Model(&payment).
				Update("status", model.PaymentStatusFailed).Error; err != nil {
				return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update payment", err))
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
