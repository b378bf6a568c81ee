package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukerupert/njord/internal/domain"
)

// CustomerRequest is the write payload for customer create and update calls.
type CustomerRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`

	Billing  *AddressRequest `json:"billing"`
	Shipping *AddressRequest `json:"shipping"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// CustomerService provides business logic for customer operations.
type CustomerService interface {
	Create(ctx context.Context, req *CustomerRequest) (*domain.Customer, error)
	Update(ctx context.Context, id int64, req *CustomerRequest) (*domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int64, error)

	// Delete removes the customer. Customers do not support trashing, so
	// the force flag is mandatory.
	Delete(ctx context.Context, id int64, force bool) (*domain.Customer, error)
}

type customerService struct {
	store  domain.CustomerStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewCustomerService creates a new CustomerService instance.
func NewCustomerService(logger zerolog.Logger, store domain.CustomerStore) (CustomerService, error) {
	if store == nil {
		return nil, errors.New("customer store is required")
	}
	return &customerService{
		store:  store,
		logger: logger.With().Str("component", "customer_service").Logger(),
		now:    time.Now,
	}, nil
}

func (s *customerService) Create(ctx context.Context, req *CustomerRequest) (*domain.Customer, error) {
	const op = "customer.create"
	now := s.now().UTC()

	if req.Email == nil || strings.TrimSpace(*req.Email) == "" {
		return nil, domain.NewValidationError(op, "email", "email is required")
	}
	email := normalizeEmail(*req.Email)

	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to check email")
	}
	if existing != 0 {
		return nil, ErrDuplicateEmail
	}

	customer := &domain.Customer{
		Email:       email,
		DateCreated: now,
	}
	applyCustomerRequest(customer, req, now)
	if customer.Username == "" {
		customer.Username = email
	}

	if err := s.store.Save(ctx, customer); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to save customer")
	}

	s.logger.Info().Int64("customer_id", customer.ID).Msg("customer created")
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id int64, req *CustomerRequest) (*domain.Customer, error) {
	const op = "customer.update"

	customer, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != customer.Email {
			existing, err := s.store.FindByEmail(ctx, email)
			if err != nil {
				return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to check email")
			}
			if existing != 0 && existing != id {
				return nil, ErrDuplicateEmail
			}
		}
	}

	applyCustomerRequest(customer, req, s.now().UTC())

	if err := s.store.Save(ctx, customer); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to save customer")
	}
	return customer, nil
}

func (s *customerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.Find(ctx, id)
}

func (s *customerService) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, int64, error) {
	filter.Email = normalizeEmail(filter.Email)

	ids, total, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	customers := make([]*domain.Customer, 0, len(ids))
	for _, id := range ids {
		customer, err := s.store.Find(ctx, id)
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				continue
			}
			return nil, 0, err
		}
		customers = append(customers, customer)
	}
	return customers, total, nil
}

func (s *customerService) Delete(ctx context.Context, id int64, force bool) (*domain.Customer, error) {
	const op = "customer.delete"

	if !force {
		return nil, ErrTrashingUnsupported
	}

	customer, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to delete customer")
	}
	return customer, nil
}

func applyCustomerRequest(customer *domain.Customer, req *CustomerRequest, now time.Time) {
	if req.Email != nil {
		customer.Email = normalizeEmail(*req.Email)
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Username != nil {
		customer.Username = *req.Username
	}
	if req.Billing != nil {
		mergeAddress(&customer.Billing, req.Billing)
	}
	if req.Shipping != nil {
		mergeAddress(&customer.Shipping, req.Shipping)
		customer.Shipping.Email = ""
		customer.Shipping.Phone = ""
	}
	for _, m := range req.MetaData {
		upsertMeta(&customer.MetaData, m)
	}
	customer.DateModified = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
