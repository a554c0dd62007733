package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m-zohaibk/AQUABILL/internal/db"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// ICustomerService defines the interface for customer record operations.
type ICustomerService interface {
	Create(ctx context.Context, name, contact string) (*models.Customer, error)
	Update(ctx context.Context, customerID utils.SixID, name, contact string) (*models.Customer, error)
	FindByID(ctx context.Context, customerID utils.SixID) (*models.Customer, error)
	FindAll(ctx context.Context) ([]models.Customer, error)
	Delete(ctx context.Context, customerID utils.SixID) error
}

const customersCollection = "customers"

// customerService implements ICustomerService.
type customerService struct {
	db *mongo.Database
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(database *mongo.Database) ICustomerService {
	return &customerService{db: database}
}

// Create inserts a new customer. The name is required; contact is optional.
func (s *customerService) Create(ctx context.Context, name, contact string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}

	collection := s.db.Collection(customersCollection)
	now := time.Now().UTC()

	var customer *models.Customer
	operation := func() error {
		customer = &models.Customer{
			Base:      models.NewBase(), // ID regenerated on each attempt
			Name:      name,
			Contact:   strings.TrimSpace(contact),
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, customer)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("error inserting customer %q: %w", name, err)
	}
	return customer, nil
}

// Update edits the customer's name and contact.
func (s *customerService) Update(ctx context.Context, customerID utils.SixID, name, contact string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}

	collection := s.db.Collection(customersCollection)
	update := bson.M{"$set": bson.M{
		"name":       name,
		"contact":    strings.TrimSpace(contact),
		"updated_at": time.Now().UTC(),
	}}

	var updated models.Customer
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": customerID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error updating customer %s: %w", customerID.String(), err)
	}
	return &updated, nil
}

// FindByID returns the customer with the given ID.
func (s *customerService) FindByID(ctx context.Context, customerID utils.SixID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"_id": customerID}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding customer %s: %w", customerID.String(), err)
	}
	return &customer, nil
}

// FindAll returns all customers sorted by name.
func (s *customerService) FindAll(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(customersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("error decoding customers: %w", err)
	}
	return customers, nil
}

// Delete removes the customer document. Deleting the customer's invoices is
// the second phase of the cascade and runs as a retried background task, so
// the two writes are individually idempotent rather than transactional.
func (s *customerService) Delete(ctx context.Context, customerID utils.SixID) error {
	result, err := s.db.Collection(customersCollection).DeleteOne(ctx, bson.M{"_id": customerID})
	if err != nil {
		return fmt.Errorf("error deleting customer %s: %w", customerID.String(), err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
