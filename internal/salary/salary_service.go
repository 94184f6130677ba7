package salary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-courier/internal/events"
	"go-courier/internal/messaging/kafka"
	salaryerrors "go-courier/internal/salary/errors"
	"go-courier/internal/shared/contextutil"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Admin operations, scoped to the admin's own drivers.
	GetBreakdown(ctx context.Context, adminID, driverID string) (BreakdownResponse, error)
	GetUnpaidTotal(ctx context.Context, adminID, driverID string) (UnpaidTotalResponse, error)
	AdjustOverride(ctx context.Context, adminID string, req AdjustOverrideRequest) (OverrideResponse, error)
	Settle(ctx context.Context, adminID, driverID string) (SettlementResponse, error)
	GetPayoutsForAdmin(ctx context.Context, adminID, driverID string) ([]PayoutResponse, error)
	Export(ctx context.Context, adminID, driverID, format string) (*ExportFile, error)

	// Driver self-service reads.
	GetOwnBreakdown(ctx context.Context, driverID string) (BreakdownResponse, error)
	GetOwnPayouts(ctx context.Context, driverID string) ([]PayoutResponse, error)

	// Receipt pipeline (called by the settlement event consumer).
	AttachReceipt(ctx context.Context, payoutID, path string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository) Service {
	return NewServiceWithOutbox(db, repo, nil)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, outbox kafka.OutboxRepository) Service {
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		now:    time.Now,
		logger: zap.L().Named("salary.service"),
	}
}

// NewServiceWithClock pins "now" so tests can settle against fixed days.
func NewServiceWithClock(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, now func() time.Time) Service {
	s := NewServiceWithOutbox(db, repo, outbox).(*service)
	s.now = now
	return s
}

func (s *service) GetBreakdown(ctx context.Context, adminID, driverID string) (BreakdownResponse, error) {
	driver, err := s.findScopedDriver(ctx, adminID, driverID)
	if err != nil {
		return BreakdownResponse{}, err
	}
	return s.breakdownFor(ctx, driver)
}

func (s *service) GetOwnBreakdown(ctx context.Context, driverID string) (BreakdownResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return BreakdownResponse{}, salaryerrors.ErrInvalidDriverID
	}
	driver, err := s.repo.FindDriverByID(ctx, driverID)
	if err != nil {
		return BreakdownResponse{}, mapDriverLookupError(err)
	}
	return s.breakdownFor(ctx, driver)
}

func (s *service) breakdownFor(ctx context.Context, driver *Driver) (BreakdownResponse, error) {
	overrides, err := s.repo.ListOverrides(ctx, driver.ID.String())
	if err != nil {
		return BreakdownResponse{}, err
	}

	entries := BuildBreakdown(driver.JoiningDate, driver.BaseSalary, overrides, s.now())
	return BreakdownResponse{
		DriverID:  driver.ID.String(),
		Breakdown: mapToEntryResponses(entries),
	}, nil
}

func (s *service) GetUnpaidTotal(ctx context.Context, adminID, driverID string) (UnpaidTotalResponse, error) {
	driver, err := s.findScopedDriver(ctx, adminID, driverID)
	if err != nil {
		return UnpaidTotalResponse{}, err
	}

	overrides, err := s.repo.ListOverrides(ctx, driverID)
	if err != nil {
		return UnpaidTotalResponse{}, err
	}

	lastPaidAt, err := s.lastPaidAt(ctx, driverID)
	if err != nil {
		return UnpaidTotalResponse{}, err
	}

	total := UnpaidTotal(driver.JoiningDate, lastPaidAt, driver.BaseSalary, overrides, s.now())
	return UnpaidTotalResponse{DriverID: driverID, TotalPayable: total}, nil
}

func (s *service) AdjustOverride(ctx context.Context, adminID string, req AdjustOverrideRequest) (OverrideResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return OverrideResponse{}, salaryerrors.ErrInvalidAdminID
	}
	if req.Amount == nil {
		return OverrideResponse{}, salaryerrors.ErrInvalidAmount
	}

	day := dateutil.DayStart(s.now())
	if req.Date != "" {
		parsed, err := dateutil.ParseDay(req.Date)
		if err != nil {
			return OverrideResponse{}, salaryerrors.ErrInvalidDateFormat
		}
		day = parsed
	}

	// Ownership check before any write.
	if _, err := s.findScopedDriver(ctx, adminID, req.DriverID); err != nil {
		return OverrideResponse{}, err
	}

	override, err := s.repo.UpsertOverride(ctx, req.DriverID, day, *req.Amount, req.Reason)
	if err != nil {
		return OverrideResponse{}, err
	}

	s.logger.Info("salary override upserted",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("driver_id", req.DriverID),
		zap.String("date", dateutil.DayKey(day)),
		zap.Int64("actual_paid", *req.Amount),
	)

	return OverrideResponse{
		ID:         override.ID.String(),
		DriverID:   override.DriverID.String(),
		Date:       dateutil.DayKey(override.Date),
		ActualPaid: override.ActualPaid,
		Reason:     override.Reason,
	}, nil
}

// Settle computes the unpaid balance and records it as a payout. The
// driver row is locked FOR UPDATE for the whole read-then-append sequence,
// so two overlapping settlements cannot both observe the same balance; the
// loser re-reads after commit and finds a zero balance.
func (s *service) Settle(ctx context.Context, adminID, driverID string) (SettlementResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(adminID); err != nil {
		return SettlementResponse{}, salaryerrors.ErrInvalidAdminID
	}
	if _, err := uuid.Parse(driverID); err != nil {
		return SettlementResponse{}, salaryerrors.ErrInvalidDriverID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SettlementResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	driver, err := qtx.LockDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SettlementResponse{}, salaryerrors.ErrDriverNotFound
		}
		return SettlementResponse{}, err
	}
	if driver.AdminID.String() != adminID {
		return SettlementResponse{}, salaryerrors.ErrDriverNotFound
	}

	overrides, err := s.repo.ListOverrides(ctx, driverID)
	if err != nil {
		return SettlementResponse{}, err
	}

	// The lock serializes settlements, so any earlier payout is already
	// committed and visible here.
	lastPaidAt, err := s.lastPaidAt(ctx, driverID)
	if err != nil {
		return SettlementResponse{}, err
	}

	now := s.now()
	total := UnpaidTotal(driver.JoiningDate, lastPaidAt, driver.BaseSalary, overrides, now)

	if total == 0 {
		// Nothing owed: no ledger entry, no boundary change. Repeating the
		// call on the same day stays a no-op.
		s.logger.Info("settlement no-op, balance already zero",
			zap.String("request_id", rid),
			zap.String("driver_id", driverID),
		)
		return SettlementResponse{DriverID: driverID, Settled: true, TotalAmount: 0}, nil
	}

	payout := &PayoutRecord{
		ID:          uuid.New(),
		DriverID:    driver.ID,
		TotalAmount: total,
		PaidAt:      now,
	}

	if err := qtx.CreatePayout(ctx, payout); err != nil {
		return SettlementResponse{}, err
	}
	if err := qtx.AdvancePayoutBoundary(ctx, driverID, now); err != nil {
		return SettlementResponse{}, err
	}

	if s.outbox != nil {
		event := events.SalarySettledEvent{
			EventType:   "salary_settled",
			PayoutID:    payout.ID.String(),
			DriverID:    driver.ID.String(),
			DriverName:  driver.Name,
			AdminID:     adminID,
			TotalAmount: total,
			PaidAt:      now,
			OccurredAt:  now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return SettlementResponse{}, err
		}
		outboxEvent := kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     rid,
			AggregateType: "salary_payout",
			AggregateID:   payout.ID.String(),
			EventType:     event.EventType,
			Topic:         events.SalarySettledTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			return SettlementResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return SettlementResponse{}, err
	}

	s.logger.Info("salary settled",
		zap.String("request_id", rid),
		zap.String("driver_id", driverID),
		zap.String("payout_id", payout.ID.String()),
		zap.Int64("total_amount", total),
	)

	payoutID := payout.ID.String()
	paidAt := now.Format(time.RFC3339)
	return SettlementResponse{
		DriverID:    driverID,
		Settled:     true,
		TotalAmount: total,
		PayoutID:    &payoutID,
		PaidAt:      &paidAt,
	}, nil
}

func (s *service) GetPayoutsForAdmin(ctx context.Context, adminID, driverID string) ([]PayoutResponse, error) {
	if _, err := s.findScopedDriver(ctx, adminID, driverID); err != nil {
		return nil, err
	}
	return s.listPayouts(ctx, driverID)
}

func (s *service) GetOwnPayouts(ctx context.Context, driverID string) ([]PayoutResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, salaryerrors.ErrInvalidDriverID
	}
	if _, err := s.repo.FindDriverByID(ctx, driverID); err != nil {
		return nil, mapDriverLookupError(err)
	}
	return s.listPayouts(ctx, driverID)
}

func (s *service) AttachReceipt(ctx context.Context, payoutID, path string) error {
	if _, err := uuid.Parse(payoutID); err != nil {
		return salaryerrors.ErrPayoutNotFound
	}
	if _, err := s.repo.FindPayout(ctx, payoutID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return salaryerrors.ErrPayoutNotFound
		}
		return err
	}
	return s.repo.SetPayoutReceipt(ctx, payoutID, path, s.now())
}

func (s *service) listPayouts(ctx context.Context, driverID string) ([]PayoutResponse, error) {
	payouts, err := s.repo.ListPayouts(ctx, driverID)
	if err != nil {
		return nil, err
	}

	resp := make([]PayoutResponse, len(payouts))
	for i, p := range payouts {
		resp[i] = PayoutResponse{
			ID:          p.ID.String(),
			DriverID:    p.DriverID.String(),
			TotalAmount: p.TotalAmount,
			PaidAt:      p.PaidAt.Format(time.RFC3339),
			ReceiptPath: p.ReceiptPath,
		}
	}
	return resp, nil
}

func (s *service) lastPaidAt(ctx context.Context, driverID string) (*time.Time, error) {
	latest, err := s.repo.LatestPayout(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &latest.PaidAt, nil
}

func (s *service) findScopedDriver(ctx context.Context, adminID, driverID string) (*Driver, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, salaryerrors.ErrInvalidAdminID
	}
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, salaryerrors.ErrInvalidDriverID
	}
	driver, err := s.repo.FindDriverByIDAndAdmin(ctx, adminID, driverID)
	if err != nil {
		return nil, mapDriverLookupError(err)
	}
	return driver, nil
}

func mapDriverLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salaryerrors.ErrDriverNotFound
	}
	return err
}

func mapToEntryResponses(entries []BreakdownEntry) []BreakdownEntryResponse {
	resp := make([]BreakdownEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = BreakdownEntryResponse{
			Date:       dateutil.DayKey(e.Date),
			Amount:     e.Amount,
			Overridden: e.Overridden,
		}
	}
	return resp
}
