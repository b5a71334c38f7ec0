package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-peoplehub/internal/authz"
	"go-peoplehub/internal/events"
	leaveerrors "go-peoplehub/internal/leave/errors"
	"go-peoplehub/internal/messaging/kafka"
	"go-peoplehub/internal/shared/contextutil"
	"go-peoplehub/internal/workcalendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxLeaveRangeDays bounds a single request. Working days are counted one
// calendar date at a time, so the range length also bounds the number of
// holiday lookups per request.
const maxLeaveRangeDays = 366

// RequesterProfile is the minimal display data an approver's inbox needs.
type RequesterProfile struct {
	FullName    string
	AvatarURL   string
	Designation string
}

// Directory is the read-only slice of the employee directory this service
// consumes for display joins.
type Directory interface {
	ProfilesByIDs(ctx context.Context, tenantID string, ids []string) (map[string]RequesterProfile, error)
}

type Service interface {
	Apply(ctx context.Context, tenantID, employeeID string, req ApplyLeaveRequest) (LeaveResponse, error)
	GetMyLeaves(ctx context.Context, tenantID, employeeID string) ([]LeaveResponse, error)
	GetMyBalance(ctx context.Context, employeeID string, year int) (*BalanceResponse, error)
	GetPendingApprovals(ctx context.Context, principal authz.Principal) ([]PendingApprovalResponse, error)
	UpdateStatus(ctx context.Context, tenantID, approverID, id string, req UpdateLeaveStatusRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, tenantID, employeeID, id string) (LeaveResponse, error)
	GetTeamCalendar(ctx context.Context, principal authz.Principal, from, to *time.Time) ([]LeaveResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	directory Directory
	scopes    *authz.ScopeResolver
	calendar  workcalendar.Resolver
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	directory Directory,
	scopes *authz.ScopeResolver,
	calendar workcalendar.Resolver,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		directory: directory,
		scopes:    scopes,
		calendar:  calendar,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Apply(ctx context.Context, tenantID, employeeID string, req ApplyLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("apply leave requested",
		zap.String("tenant_id", tenantID),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	tenantUUID, err := uuid.Parse(tenantID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidTenantID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if endDate.Before(startDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	// The working-day walk below checks every calendar date in the range, so
	// an unbounded range would mean an unbounded number of holiday lookups.
	if endDate.Sub(startDate) > maxLeaveRangeDays*24*time.Hour {
		return LeaveResponse{}, leaveerrors.ErrDateRangeTooLong
	}

	daysCount, err := s.countWorkingDays(ctx, tenantID, startDate, endDate)
	if err != nil {
		s.logger.Error("apply leave working day count failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if daysCount == 0 {
		return LeaveResponse{}, leaveerrors.ErrZeroWorkingDays
	}

	// Balances are keyed by the year the leave starts in, both here and at
	// approval time.
	year := startDate.Year()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	balance, err := qtx.FindBalance(ctx, employeeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrBalanceNotFound
		}
		s.logger.Error("apply leave balance lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	// The whole request converts to loss-of-pay when the quota cannot cover
	// it; there is no partial split at submission time.
	isLossOfPay := req.LeaveType == TypeLossOfPay
	if !isLossOfPay && lossOfPayFallback[req.LeaveType] {
		isLossOfPay = balance.quotaFor(req.LeaveType) < daysCount
	}

	var reportedAt *time.Time
	if req.EmergencyReportedAt != nil && *req.EmergencyReportedAt != "" {
		if t, err := time.Parse(time.RFC3339, *req.EmergencyReportedAt); err == nil {
			reportedAt = &t
		}
	}

	l := &Request{
		ID:          uuid.New(),
		TenantID:    tenantUUID,
		EmployeeID:  employeeUUID,
		LeaveType:   req.LeaveType,
		StartDate:   startDate,
		EndDate:     endDate,
		DaysCount:   daysCount,
		Reason:      req.Reason,
		IsLossOfPay: isLossOfPay,
		Status:      StatusPending,
		IsEmergency: req.IsEmergency,
		ReportedVia: req.EmergencyReportedVia,
		ReportedAt:  reportedAt,
		Attachments: req.Attachments,
	}

	if err := qtx.CreateRequest(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.queueRequestedEvent(ctx, tx, l); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("days_count", daysCount),
		zap.Bool("is_loss_of_pay", isLossOfPay),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetMyLeaves(ctx context.Context, tenantID, employeeID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindRequestsByEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// GetMyBalance returns nil (not an error) when no balance record exists; the
// handler renders that as an empty object.
func (s *service) GetMyBalance(ctx context.Context, employeeID string, year int) (*BalanceResponse, error) {
	b, err := s.repo.FindBalance(ctx, employeeID, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &BalanceResponse{
		EmployeeID:  b.EmployeeID.String(),
		Year:        b.Year,
		Annual:      b.Annual,
		Sick:        b.Sick,
		Casual:      b.Casual,
		Maternity:   b.Maternity,
		Paternity:   b.Paternity,
		LossOfPay:   b.LossOfPay,
		CarriedOver: b.CarriedOver,
	}, nil
}

func (s *service) GetPendingApprovals(ctx context.Context, principal authz.Principal) ([]PendingApprovalResponse, error) {
	scope, err := s.scopes.ApprovalScope(ctx, principal)
	if err != nil {
		s.logger.Error("pending approvals scope resolution failed", zap.Error(err))
		return nil, err
	}

	var requests []Request
	if scope.All {
		requests, err = s.repo.FindPendingByTenant(ctx, principal.TenantID)
	} else {
		requests, err = s.repo.FindPendingByEmployees(ctx, principal.TenantID, scope.EmployeeIDs)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.EmployeeID.String())
	}

	profiles := map[string]RequesterProfile{}
	if len(ids) > 0 {
		profiles, err = s.directory.ProfilesByIDs(ctx, principal.TenantID, ids)
		if err != nil {
			s.logger.Error("pending approvals profile lookup failed", zap.Error(err))
			return nil, err
		}
	}

	resp := make([]PendingApprovalResponse, len(requests))
	for i, r := range requests {
		p := profiles[r.EmployeeID.String()]
		resp[i] = PendingApprovalResponse{
			LeaveResponse:        mapToResponse(r),
			RequesterName:        p.FullName,
			RequesterAvatarURL:   p.AvatarURL,
			RequesterDesignation: p.Designation,
		}
	}
	return resp, nil
}

func (s *service) UpdateStatus(ctx context.Context, tenantID, approverID, id string, req UpdateLeaveStatusRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave status requested",
		zap.String("leave_id", id),
		zap.String("tenant_id", tenantID),
		zap.String("approver_id", approverID),
		zap.String("target_status", req.Status),
	)

	if _, err := uuid.Parse(tenantID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidTenantID
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestByIDAndTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	// Terminal states are final; double approval/rejection is a conflict,
	// never a silent no-op.
	if l.Status != StatusPending {
		s.logger.Warn("update leave status conflict",
			zap.String("leave_id", id),
			zap.String("current_status", l.Status),
			zap.String("target_status", req.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	l.Status = req.Status
	l.ApproverID = &approverUUID
	switch req.Status {
	case StatusApproved:
		now := time.Now().UTC()
		l.ApprovedAt = &now
		l.RejectionReason = nil

		if err := s.applyBalanceDeduction(ctx, qtx, l); err != nil {
			return LeaveResponse{}, err
		}
	case StatusRejected:
		if req.RejectionReason == nil || *req.RejectionReason == "" {
			return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
		}
		l.RejectionReason = req.RejectionReason
	}

	if err := qtx.UpdateRequest(ctx, l); err != nil {
		s.logger.Error("update leave status persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := s.queueStatusChangedEvent(ctx, tx, l); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave status commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.logger.Info("update leave status success",
		zap.String("leave_id", id),
		zap.String("status", l.Status),
	)
	return mapToResponse(*l), nil
}

// applyBalanceDeduction settles the balance for an approval. Loss-of-pay
// requests accumulate unpaid days; everything else deducts its quota with the
// shortfall spilling to loss_of_pay inside one atomic update. A missing
// balance row skips the deduction rather than blocking the approval.
func (s *service) applyBalanceDeduction(ctx context.Context, qtx Repository, l *Request) error {
	year := l.StartDate.Year()
	employeeID := l.EmployeeID.String()

	var (
		applied bool
		err     error
	)
	if l.IsLossOfPay || l.LeaveType == TypeLossOfPay {
		applied, err = qtx.AddLossOfPay(ctx, employeeID, year, l.DaysCount)
	} else {
		applied, err = qtx.ApplyQuotaDeduction(ctx, employeeID, year, l.LeaveType, l.DaysCount)
	}
	if err != nil {
		s.logger.Error("approve leave balance deduction failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	if !applied {
		s.logger.Warn("approve leave balance record missing, deduction skipped",
			zap.String("leave_id", l.ID.String()),
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
		)
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, tenantID, employeeID, id string) (LeaveResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestByIDAndTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.EmployeeID.String() != employeeID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	l.Status = StatusCancelled

	if err := qtx.UpdateRequest(ctx, l); err != nil {
		s.logger.Error("cancel leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.queueStatusChangedEvent(ctx, tx, l); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) GetTeamCalendar(ctx context.Context, principal authz.Principal, from, to *time.Time) ([]LeaveResponse, error) {
	scope, err := s.scopes.CalendarScope(ctx, principal)
	if err != nil {
		s.logger.Error("team calendar scope resolution failed", zap.Error(err))
		return nil, err
	}

	var requests []Request
	if scope.All {
		requests, err = s.repo.FindApprovedByTenant(ctx, principal.TenantID, from, to)
	} else {
		requests, err = s.repo.FindApprovedByEmployees(ctx, principal.TenantID, scope.EmployeeIDs, from, to)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

// countWorkingDays walks every calendar date in [start, end] inclusive and
// counts the ones the work calendar accepts.
func (s *service) countWorkingDays(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		working, err := s.calendar.IsWorkingDay(ctx, tenantID, d)
		if err != nil {
			return 0, err
		}
		if working {
			count++
		}
	}
	return count, nil
}

func (s *service) queueRequestedEvent(ctx context.Context, tx *sql.Tx, l *Request) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveRequestedEvent{
		EventType:  "leave_requested",
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		TenantID:   l.TenantID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		DaysCount:  l.DaysCount,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) queueStatusChangedEvent(ctx context.Context, tx *sql.Tx, l *Request) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	approverID := ""
	if l.ApproverID != nil {
		approverID = l.ApproverID.String()
	}
	event := events.LeaveStatusChangedEvent{
		EventType:  "leave_status_changed",
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		TenantID:   l.TenantID.String(),
		EmployeeID: l.EmployeeID.String(),
		ApproverID: approverID,
		Status:     l.Status,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Request) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		TenantID:    l.TenantID.String(),
		EmployeeID:  l.EmployeeID.String(),
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		DaysCount:   l.DaysCount,
		Reason:      l.Reason,
		IsLossOfPay: l.IsLossOfPay,
		Status:      l.Status,
		IsEmergency: l.IsEmergency,
		ReportedVia: l.ReportedVia,
		Attachments: l.Attachments,
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if l.ReportedAt != nil {
		v := l.ReportedAt.Format(time.RFC3339)
		resp.ReportedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []Request) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
