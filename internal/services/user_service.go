package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/m-zohaibk/AQUABILL/internal/auth"
	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/db"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// IUserService defines the interface for operator account operations.
type IUserService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: database, cfg: cfg}
}

// SignUp creates a new operator account. The minimum password length is
// configurable and defaults to 6.
func (s *userService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrValidation)
	}
	minLen := 6
	if s.cfg != nil && s.cfg.PasswordMinLength > 0 {
		minLen = s.cfg.PasswordMinLength
	}
	if len(password) < minLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minLen)
	}

	collection := s.db.Collection(usersCollection)

	// Check uniqueness up front; the unique email index is the backstop
	// against races.
	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness for %s: %w", email, err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var user *models.User
	operation := func() error {
		user = &models.User{
			Base:         models.NewBase(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, insertErr := collection.InsertOne(ctx, user)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "email") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error inserting user for %s: %w", email, err)
	}
	return user, nil
}

// SignIn verifies credentials and returns the account. A missing account and
// a wrong password are indistinguishable to the caller.
func (s *userService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID returns the user with the given ID.
func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user %s: %w", userID.String(), err)
	}
	return &user, nil
}

// FindByEmail finds a user by their email address.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	return &user, nil
}
