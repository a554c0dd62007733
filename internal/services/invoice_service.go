package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m-zohaibk/AQUABILL/internal/billing"
	"github.com/m-zohaibk/AQUABILL/internal/db"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// InvoiceInput carries the user-entered invoice fields. The derived fields
// (duration, total, pending) are computed by the service, never accepted
// from the client.
type InvoiceInput struct {
	CustomerID     utils.SixID
	Date           string // models.DateLayout
	StartTime      string // "HH:MM", blank tolerated
	EndTime        string // "HH:MM", blank tolerated
	RatePerMinute  *float64
	AmountReceived float64
}

// IInvoiceService defines the interface for invoice operations.
type IInvoiceService interface {
	Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error)
	Update(ctx context.Context, invoiceID utils.SixID, in InvoiceInput) (*models.Invoice, error)
	FindByID(ctx context.Context, invoiceID utils.SixID) (*models.Invoice, error)
	FindByCustomer(ctx context.Context, customerID utils.SixID) ([]models.Invoice, error)
	FindAll(ctx context.Context) ([]models.Invoice, error)
	Delete(ctx context.Context, invoiceID utils.SixID) error
	DeleteByCustomer(ctx context.Context, customerID utils.SixID) (int64, error)
}

const invoicesCollection = "invoices"

// invoiceService implements IInvoiceService.
type invoiceService struct {
	db          *mongo.Database
	customerSvc ICustomerService
	settingsSvc ISettingsService
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(database *mongo.Database, customerSvc ICustomerService, settingsSvc ISettingsService) IInvoiceService {
	return &invoiceService{db: database, customerSvc: customerSvc, settingsSvc: settingsSvc}
}

// resolveRate returns the rate to freeze into the record: the explicit rate
// when given, otherwise the tenant's current default from Settings.
func (s *invoiceService) resolveRate(ctx context.Context, in InvoiceInput) (float64, error) {
	if in.RatePerMinute != nil {
		if *in.RatePerMinute <= 0 {
			return 0, fmt.Errorf("%w: rate per minute must be positive", ErrValidation)
		}
		return *in.RatePerMinute, nil
	}
	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read settings for default rate: %w", err)
	}
	if settings.RatePerMinute <= 0 {
		return 0, fmt.Errorf("%w: configured rate per minute must be positive", ErrValidation)
	}
	return settings.RatePerMinute, nil
}

func (s *invoiceService) validateInput(in InvoiceInput) error {
	if in.CustomerID.IsZero() {
		return fmt.Errorf("%w: a customer must be selected", ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: date must be in %s form", ErrValidation, models.DateLayout)
	}
	if in.AmountReceived < 0 {
		return fmt.Errorf("%w: amount received cannot be negative", ErrValidation)
	}
	return nil
}

// applyDerived recomputes the three derived fields together. It is the only
// place they are ever written, which keeps the stored record re-derivable
// from its own inputs.
func applyDerived(inv *models.Invoice) {
	inv.DurationMinutes = billing.DurationMinutes(inv.StartTime, inv.EndTime)
	inv.TotalCost, inv.AmountPending = billing.Totals(inv.DurationMinutes, inv.RatePerMinute, inv.AmountReceived)
}

// Create validates the submission and persists a new invoice with its
// derived fields computed.
func (s *invoiceService) Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.customerSvc.FindByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: customer %s does not exist", ErrValidation, in.CustomerID.String())
		}
		return nil, err
	}
	rate, err := s.resolveRate(ctx, in)
	if err != nil {
		return nil, err
	}

	collection := s.db.Collection(invoicesCollection)
	now := time.Now().UTC()

	var invoice *models.Invoice
	operation := func() error {
		invoice = &models.Invoice{
			Base:           models.NewBase(),
			CustomerID:     in.CustomerID,
			Date:           in.Date,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			RatePerMinute:  rate,
			AmountReceived: in.AmountReceived,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		applyDerived(invoice)
		_, insertErr := collection.InsertOne(ctx, invoice)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("error inserting invoice for customer %s: %w", in.CustomerID.String(), err)
	}
	return invoice, nil
}

// Update edits an invoice, recomputing all derived fields from the new
// inputs in one write.
func (s *invoiceService) Update(ctx context.Context, invoiceID utils.SixID, in InvoiceInput) (*models.Invoice, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	// Edits can repoint the invoice, so the target customer must exist just
	// as it must on create. Otherwise an edit after a purge would leave an
	// invoice no cleanup task will ever find.
	if _, err := s.customerSvc.FindByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: customer %s does not exist", ErrValidation, in.CustomerID.String())
		}
		return nil, err
	}
	rate, err := s.resolveRate(ctx, in)
	if err != nil {
		return nil, err
	}

	updated := models.Invoice{
		CustomerID:     in.CustomerID,
		Date:           in.Date,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		RatePerMinute:  rate,
		AmountReceived: in.AmountReceived,
		UpdatedAt:      time.Now().UTC(),
	}
	applyDerived(&updated)

	collection := s.db.Collection(invoicesCollection)
	update := bson.M{"$set": bson.M{
		"customer_id":      updated.CustomerID,
		"date":             updated.Date,
		"start_time":       updated.StartTime,
		"end_time":         updated.EndTime,
		"rate_per_minute":  updated.RatePerMinute,
		"duration_minutes": updated.DurationMinutes,
		"total_cost":       updated.TotalCost,
		"amount_received":  updated.AmountReceived,
		"amount_pending":   updated.AmountPending,
		"updated_at":       updated.UpdatedAt,
	}}

	var result models.Invoice
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": invoiceID}, update, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error updating invoice %s: %w", invoiceID.String(), err)
	}
	return &result, nil
}

// FindByID returns the invoice with the given ID.
func (s *invoiceService) FindByID(ctx context.Context, invoiceID utils.SixID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Collection(invoicesCollection).FindOne(ctx, bson.M{"_id": invoiceID}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding invoice %s: %w", invoiceID.String(), err)
	}
	return &invoice, nil
}

// FindByCustomer returns a customer's invoices, newest date first. ISO dates
// sort lexically, so a plain descending index order suffices.
func (s *invoiceService) FindByCustomer(ctx context.Context, customerID utils.SixID) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}})
	cursor, err := s.db.Collection(invoicesCollection).Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices for customer %s: %w", customerID.String(), err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("error decoding invoices: %w", err)
	}
	return invoices, nil
}

// FindAll returns every invoice, newest date first.
func (s *invoiceService) FindAll(ctx context.Context) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}})
	cursor, err := s.db.Collection(invoicesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("error decoding invoices: %w", err)
	}
	return invoices, nil
}

// Delete removes the invoice. There is no soft delete or undo.
func (s *invoiceService) Delete(ctx context.Context, invoiceID utils.SixID) error {
	result, err := s.db.Collection(invoicesCollection).DeleteOne(ctx, bson.M{"_id": invoiceID})
	if err != nil {
		return fmt.Errorf("error deleting invoice %s: %w", invoiceID.String(), err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByCustomer removes all invoices of a customer. Idempotent: deleting
// an already-purged customer's invoices is a no-op, which lets the purge
// task be retried safely.
func (s *invoiceService) DeleteByCustomer(ctx context.Context, customerID utils.SixID) (int64, error) {
	result, err := s.db.Collection(invoicesCollection).DeleteMany(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return 0, fmt.Errorf("error purging invoices for customer %s: %w", customerID.String(), err)
	}
	return result.DeletedCount, nil
}
