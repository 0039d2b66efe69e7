package usecase

import (
	"context"
	"fmt"
	"time"

	"tour-payouts/internal/data/entity"
	"tour-payouts/internal/data/repository"
	"tour-payouts/internal/dto/request"
	"tour-payouts/internal/dto/response"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentMethodService interface {
	AddPaymentMethod(ctx context.Context, operatorID string, req *request.AddPaymentMethodRequest) (*response.PaymentMethodResponse, error)
	GetPaymentMethods(ctx context.Context, operatorID string) ([]response.PaymentMethodResponse, error)
	GetPrimaryMethod(ctx context.Context, operatorID string) (*response.PaymentMethodResponse, error)
	SetPrimaryMethod(ctx context.Context, operatorID, methodID string) error
	UpdateVerification(ctx context.Context, methodID string, req *request.UpdateVerificationRequest) (*response.PaymentMethodResponse, error)
	RemovePaymentMethod(ctx context.Context, operatorID, methodID string) error
}

type paymentMethodService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPaymentMethodService(repo *repository.Repository, log *zap.Logger) PaymentMethodService {
	return &paymentMethodService{
		repo: repo,
		log:  log.With(zap.String("service", "payment_method")),
	}
}

func (s *paymentMethodService) AddPaymentMethod(ctx context.Context, operatorID string, req *request.AddPaymentMethodRequest) (*response.PaymentMethodResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: "validation failed", Fields: errors}
	}

	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	operator, err := s.repo.Operator.FindByID(ctx, operatorUUID)
	if err != nil {
		return nil, fmt.Errorf("load operator %s: %w", operatorID, err)
	}
	if operator == nil {
		return nil, &errs.NotFoundError{Entity: "operator", ID: operatorID}
	}

	kind := entity.MethodKind(req.Kind)
	details, err := entity.DecodeDetails(kind, req.Details)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid %s details payload", kind)}
	}

	if errors := utils.ValidateStruct(details); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid %s details", kind), Fields: errors}
	}

	if ach, ok := details.(entity.ACHDetails); ok {
		if !entity.ValidateRoutingNumber(ach.RoutingNumber) {
			return nil, &errs.ValidationError{
				Message: "invalid ach details",
				Fields:  map[string]string{"RoutingNumber": "Routing number fails the ABA checksum"},
			}
		}
	}

	now := time.Now()
	method := &entity.PaymentMethod{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OperatorID:         operatorUUID,
		Kind:               kind,
		IsPrimary:          false,
		Status:             entity.MethodStatusPendingVerification,
		VerificationStatus: entity.VerificationPending,
		Details:            details,
	}

	if err := s.repo.PaymentMethod.Create(ctx, method); err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}

	s.log.Info("Payment method added",
		zap.String("payment_method_id", method.ID.String()),
		zap.String("operator_id", operatorID),
		zap.String("kind", string(kind)),
	)

	resp := response.PaymentMethodToResponse(method)
	return &resp, nil
}

func (s *paymentMethodService) GetPaymentMethods(ctx context.Context, operatorID string) ([]response.PaymentMethodResponse, error) {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	methods, err := s.repo.PaymentMethod.FindByOperator(ctx, operatorUUID)
	if err != nil {
		return nil, fmt.Errorf("get payment methods: %w", err)
	}

	responses := make([]response.PaymentMethodResponse, len(methods))
	for i, method := range methods {
		responses[i] = response.PaymentMethodToResponse(method)
	}
	return responses, nil
}

func (s *paymentMethodService) GetPrimaryMethod(ctx context.Context, operatorID string) (*response.PaymentMethodResponse, error) {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	method, err := s.repo.PaymentMethod.FindPrimary(ctx, operatorUUID)
	if err != nil {
		return nil, fmt.Errorf("get primary payment method: %w", err)
	}
	if method == nil {
		return nil, nil
	}

	resp := response.PaymentMethodToResponse(method)
	return &resp, nil
}

func (s *paymentMethodService) SetPrimaryMethod(ctx context.Context, operatorID, methodID string) error {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	methodUUID, err := uuid.Parse(methodID)
	if err != nil {
		return &errs.ValidationError{Message: fmt.Sprintf("invalid payment method ID format %s", methodID)}
	}

	return s.repo.PaymentMethod.SetPrimary(ctx, methodUUID, operatorUUID)
}

// UpdateVerification applies a verification outcome. verified activates the
// method, failed rejects it; pending and manual_review record the outcome
// without touching the lifecycle status.
func (s *paymentMethodService) UpdateVerification(ctx context.Context, methodID string, req *request.UpdateVerificationRequest) (*response.PaymentMethodResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: "validation failed", Fields: errors}
	}

	methodUUID, err := uuid.Parse(methodID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid payment method ID format %s", methodID)}
	}

	method, err := s.repo.PaymentMethod.FindByID(ctx, methodUUID)
	if err != nil {
		return nil, fmt.Errorf("load payment method %s: %w", methodID, err)
	}
	if method == nil {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: methodID}
	}

	outcome := entity.VerificationStatus(req.Outcome)
	status := method.Status
	switch outcome {
	case entity.VerificationVerified:
		status = entity.MethodStatusActive
	case entity.VerificationFailed:
		status = entity.MethodStatusRejected
	}

	updated, err := s.repo.PaymentMethod.UpdateVerification(ctx, methodUUID, outcome, status)
	if err != nil {
		return nil, fmt.Errorf("update verification: %w", err)
	}

	s.log.Info("Payment method verification updated",
		zap.String("payment_method_id", methodID),
		zap.String("outcome", string(outcome)),
		zap.String("status", string(status)),
	)

	resp := response.PaymentMethodToResponse(updated)
	return &resp, nil
}

func (s *paymentMethodService) RemovePaymentMethod(ctx context.Context, operatorID, methodID string) error {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	methodUUID, err := uuid.Parse(methodID)
	if err != nil {
		return &errs.ValidationError{Message: fmt.Sprintf("invalid payment method ID format %s", methodID)}
	}

	return s.repo.PaymentMethod.Deactivate(ctx, methodUUID, operatorUUID)
}
