package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	employeeerrors "go-peoplehub/internal/employee/errors"
	"go-peoplehub/internal/events"
	"go-peoplehub/internal/messaging/kafka"
	"go-peoplehub/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, tenantID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, tenantID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, tenantID, id string) (EmployeeResponse, error)
	CountActive(ctx context.Context, tenantID string) (int64, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, logger: l}
}

func (s *service) Create(ctx context.Context, tenantID string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("tenant_id", tenantID),
		zap.String("email", req.Email),
	)

	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidTenantID
	}

	var managerID *uuid.UUID
	if req.ReportingManagerID != nil && *req.ReportingManagerID != "" {
		parsed, err := uuid.Parse(*req.ReportingManagerID)
		if err != nil {
			return EmployeeResponse{}, employeeerrors.ErrInvalidManagerID
		}
		managerID = &parsed
	}

	role := req.Role
	if role == "" {
		role = "Employee"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl := &Employee{
		ID:                 uuid.New(),
		TenantID:           tenantUUID,
		FullName:           req.FullName,
		Email:              req.Email,
		Designation:        req.Designation,
		AvatarURL:          req.AvatarURL,
		Role:               role,
		TeamID:             req.TeamID,
		ReportingManagerID: managerID,
		Status:             StatusActive,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.EmployeeCreatedEvent{
			EventType:  "employee_created",
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			TenantID:   tenantID,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "employee",
			AggregateID:   empl.ID.String(),
			EventType:     event.EventType,
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, tenantID string) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAllByTenant(ctx, tenantID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id string) (EmployeeResponse, error) {
	e, err := s.repo.FindByIDAndTenant(ctx, tenantID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

// CountActive is the usage provider for the max_employees entitlement limit.
func (s *service) CountActive(ctx context.Context, tenantID string) (int64, error) {
	return s.repo.CountActiveByTenant(ctx, tenantID)
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:          e.ID.String(),
		TenantID:    e.TenantID.String(),
		FullName:    e.FullName,
		Email:       e.Email,
		Designation: e.Designation,
		AvatarURL:   e.AvatarURL,
		Role:        e.Role,
		TeamID:      e.TeamID,
		Status:      e.Status,
	}
	if e.ReportingManagerID != nil {
		v := e.ReportingManagerID.String()
		resp.ReportingManagerID = &v
	}
	return resp
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
