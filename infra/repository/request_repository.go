package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// updateDecision writes the review fields of a request row only while its
// status is still from.
func updateDecision(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, from, to request.Status, review request.Review) error {
	var result *gorm.DB
	if err := WrapError(func() error {
		result = db.WithContext(ctx).
			Model(model).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(map[string]any{
				"status":     string(to),
				"admin_note": review.AdminNote,
				"decided_by": review.DecidedBy,
				"decided_at": review.DecidedAt,
			})
		return result.Error
	}); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: request %s is no longer %s", common.ErrInvalidTransition, id, from)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type topupRepository struct {
	db *gorm.DB
}

// NewTopupRepository creates a new TopupRepository backed by db.
func NewTopupRepository(db *gorm.DB) repository.TopupRepository {
	return &topupRepository{db: db}
}

func (r *topupRepository) Create(ctx context.Context, t *request.Topup) error {
	m := mapTopupFromDomain(t)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *topupRepository) Get(ctx context.Context, id uuid.UUID) (*request.Topup, error) {
	var m TopupRequest
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return mapTopupToDomain(&m), nil
}

func (r *topupRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*request.Topup, error) {
	return r.list(ctx, r.db.Where("owner_id = ?", ownerID).Order("created_at DESC, id DESC"))
}

// ListByStatus returns the queue oldest first.
func (r *topupRepository) ListByStatus(ctx context.Context, status request.Status) ([]*request.Topup, error) {
	return r.list(ctx, r.db.Where("status = ?", string(status)).Order("created_at ASC, id ASC"))
}

func (r *topupRepository) list(ctx context.Context, q *gorm.DB) ([]*request.Topup, error) {
	var models []TopupRequest
	if err := WrapError(func() error {
		return q.WithContext(ctx).Find(&models).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*request.Topup, 0, len(models))
	for i := range models {
		out = append(out, mapTopupToDomain(&models[i]))
	}
	return out, nil
}

func (r *topupRepository) UpdateDecision(ctx context.Context, t *request.Topup, from request.Status) error {
	return updateDecision(ctx, r.db, &TopupRequest{}, t.ID, from, t.Status, t.Review)
}

type withdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new WithdrawalRepository backed by db.
func NewWithdrawalRepository(db *gorm.DB) repository.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, w *request.Withdrawal) error {
	m := mapWithdrawalFromDomain(w)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *withdrawalRepository) Get(ctx context.Context, id uuid.UUID) (*request.Withdrawal, error) {
	var m WithdrawalRequest
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	}); err != nil {
		return nil, err
	}
	return mapWithdrawalToDomain(&m), nil
}

func (r *withdrawalRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*request.Withdrawal, error) {
	return r.list(ctx, r.db.Where("owner_id = ?", ownerID).Order("created_at DESC, id DESC"))
}

// ListByStatus returns the queue oldest first.
func (r *withdrawalRepository) ListByStatus(ctx context.Context, status request.Status) ([]*request.Withdrawal, error) {
	return r.list(ctx, r.db.Where("status = ?", string(status)).Order("created_at ASC, id ASC"))
}

func (r *withdrawalRepository) list(ctx context.Context, q *gorm.DB) ([]*request.Withdrawal, error) {
	var models []WithdrawalRequest
	if err := WrapError(func() error {
		return q.WithContext(ctx).Find(&models).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*request.Withdrawal, 0, len(models))
	for i := range models {
		out = append(out, mapWithdrawalToDomain(&models[i]))
	}
	return out, nil
}

func (r *withdrawalRepository) UpdateDecision(ctx context.Context, w *request.Withdrawal, from request.Status) error {
	return updateDecision(ctx, r.db, &WithdrawalRequest{}, w.ID, from, w.Status, w.Review)
}

func mapTopupFromDomain(t *request.Topup) *TopupRequest {
	return &TopupRequest{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Amount:      t.Amount,
		EvidenceRef: t.EvidenceRef,
		Status:      string(t.Status),
		AdminNote:   t.AdminNote,
		DecidedBy:   t.DecidedBy,
		DecidedAt:   utcPtr(t.DecidedAt),
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func mapTopupToDomain(m *TopupRequest) *request.Topup {
	return &request.Topup{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Amount:      m.Amount,
		EvidenceRef: m.EvidenceRef,
		Status:      request.Status(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		Review: request.Review{
			AdminNote: m.AdminNote,
			DecidedBy: m.DecidedBy,
			DecidedAt: utcPtr(m.DecidedAt),
		},
	}
}

func mapWithdrawalFromDomain(w *request.Withdrawal) *WithdrawalRequest {
	return &WithdrawalRequest{
		ID:          w.ID,
		OwnerID:     w.OwnerID,
		Kind:        string(w.Kind),
		Amount:      w.Amount,
		BankDetails: w.BankDetails,
		Status:      string(w.Status),
		AdminNote:   w.AdminNote,
		DecidedBy:   w.DecidedBy,
		DecidedAt:   utcPtr(w.DecidedAt),
		CreatedAt:   w.CreatedAt.UTC(),
	}
}

func mapWithdrawalToDomain(m *WithdrawalRequest) *request.Withdrawal {
	return &request.Withdrawal{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Kind:        request.Kind(m.Kind),
		Amount:      m.Amount,
		BankDetails: m.BankDetails,
		Status:      request.Status(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		Review: request.Review{
			AdminNote: m.AdminNote,
			DecidedBy: m.DecidedBy,
			DecidedAt: utcPtr(m.DecidedAt),
		},
	}
}
