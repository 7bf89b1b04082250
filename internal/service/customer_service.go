package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
	"github.com/Raymond9734/storefront-backend/internal/repository"
)

// CustomerService handles customer business logic
type CustomerService interface {
	Create(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetByID(ctx context.Context, id, storeID string) (*models.Customer, error)
	List(ctx context.Context, storeID string, page models.PageRequest) (*CustomerListResult, error)
	Update(ctx context.Context, id string, req *UpdateCustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, id, storeID string) error
	Authenticate(ctx context.Context, req *CustomerLoginRequest) (*LoginResult, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	hasher       auth.PasswordHasher
	tokens       *auth.TokenManager
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		hasher:       hasher,
		tokens:       tokens,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *customerService) Create(ctx context.Context, req *CreateCustomerRequest) (customer *models.Customer, err error) {
	defer func() { metrics.ObserveMutation("customer", "create", err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, req.Email, req.StoreID, ""); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	customer, err = models.NewCustomer(models.CustomerParams{
		ID:           uuid.NewString(),
		TenantID:     req.StoreID,
		Name:         req.Name,
		TaxID:        req.TaxID,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Status:       models.CustomerStatusActive,
	})
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		s.logger.Error("failed to create customer",
			zap.String("store_id", req.StoreID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID()),
		zap.String("store_id", customer.TenantID()),
	)

	return customer, nil
}

// GetByID retrieves a customer by ID
func (s *customerService) GetByID(ctx context.Context, id, storeID string) (*models.Customer, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}
	return s.customerRepo.FindByID(ctx, id, storeID)
}

// List retrieves customers with pagination
func (s *customerService) List(ctx context.Context, storeID string, page models.PageRequest) (*CustomerListResult, error) {
	if err := required("store_id", storeID); err != nil {
		return nil, err
	}

	customers, total, err := s.customerRepo.FindAll(ctx, storeID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	data := make([]*CustomerResponse, 0, len(customers))
	for _, c := range customers {
		data = append(data, NewCustomerResponse(c))
	}

	return &CustomerListResult{
		Data:       data,
		Pagination: models.NewPaginationResult(page, total),
	}, nil
}

// Update applies the present fields of req through the customer's setters
func (s *customerService) Update(ctx context.Context, id string, req *UpdateCustomerRequest) (customer *models.Customer, err error) {
	defer func() { metrics.ObserveMutation("customer", "update", err) }()

	if err := required("store_id", req.StoreID); err != nil {
		return nil, err
	}

	customer, err = s.customerRepo.FindByID(ctx, id, req.StoreID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := customer.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := s.ensureEmailAvailable(ctx, *req.Email, req.StoreID, customer.ID()); err != nil {
			return nil, err
		}
		if err := customer.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := customer.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := models.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		if err := customer.SetPasswordHash(hash); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		status, err := models.ParseCustomerStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if err := customer.SetStatus(status); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Error("failed to update customer",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("customer updated",
		zap.String("customer_id", id),
		zap.Int64("version", customer.Version()),
	)

	return customer, nil
}

// Delete soft-deletes a customer
func (s *customerService) Delete(ctx context.Context, id, storeID string) (err error) {
	defer func() { metrics.ObserveMutation("customer", "delete", err) }()

	if err := required("store_id", storeID); err != nil {
		return err
	}

	customer, err := s.customerRepo.FindByID(ctx, id, storeID)
	if err != nil {
		return err
	}

	customer.SoftDelete()

	if err := s.customerRepo.SoftDelete(ctx, customer); err != nil {
		s.logger.Error("failed to delete customer",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted", zap.String("customer_id", id))

	return nil
}

// Authenticate checks a customer's credentials and issues a store-scoped token
func (s *customerService) Authenticate(ctx context.Context, req *CustomerLoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByEmail(ctx, models.NormalizeEmail(req.Email), req.StoreID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorizedWithMsg("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if err := s.hasher.Compare(customer.PasswordHash(), req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, models.ErrUnauthorizedWithMsg("invalid credentials")
		}
		return nil, err
	}

	if !customer.IsActive() {
		return nil, models.ErrForbiddenWithMsg("customer account is not active")
	}

	token, err := s.tokens.GenerateCustomerToken(customer.ID(), customer.TenantID(), customer.Email())
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer authenticated",
		zap.String("customer_id", customer.ID()),
		zap.String("store_id", customer.TenantID()),
	)

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.ExpiresIn().Seconds()),
		Customer:  NewCustomerResponse(customer),
	}, nil
}

// ensureEmailAvailable fails with CONFLICT when another live customer in the
// store already uses email. selfID is excluded.
func (s *customerService) ensureEmailAvailable(ctx context.Context, email, storeID, selfID string) error {
	existing, err := s.customerRepo.FindByEmail(ctx, models.NormalizeEmail(email), storeID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID() == selfID {
		return nil
	}
	return models.ErrConflictWithMsg("email already registered for this store")
}
