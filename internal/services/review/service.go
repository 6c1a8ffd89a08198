// Package review exposes pending registrations to admins and applies the
// approve/reject transition to a notification and its business together.
package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/common/metrics"
	"franchisehub-api/internal/mailer"
	"franchisehub-api/internal/models"
)

// MailEnqueuer hands decision emails to the async dispatcher.
type MailEnqueuer interface {
	Enqueue(job mailer.Job)
}

type Service struct {
	db     *sql.DB
	mail   MailEnqueuer
	logger logger.Logger
}

func NewService(db *sql.DB, mail MailEnqueuer, log logger.Logger) *Service {
	return &Service{
		db:     db,
		mail:   mail,
		logger: log.WithFields(map[string]interface{}{"service": "review"}),
	}
}

// ListPending returns every pending notification joined with its business
// record. No pagination; ordering follows insertion.
func (s *Service) ListPending(ctx context.Context) ([]models.PendingNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.business_id, n.status, n.created_at,
		       b.id, b.company_name, b.industry, b.year_established,
		       b.headquarters, b.website, b.franchise_name,
		       b.franchise_description, b.investment_range, b.franchise_fee,
		       b.royalty_fee, b.email, b.financial_documents, b.is_agreed,
		       b.status, b.created_at, b.updated_at
		FROM notifications n
		JOIN businesses b ON b.id = n.business_id
		WHERE n.status = $1`,
		models.StatusPending,
	)
	if err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	defer rows.Close()

	pending := []models.PendingNotification{}
	for rows.Next() {
		var item models.PendingNotification
		var documents sql.NullString
		err := rows.Scan(
			&item.ID, &item.BusinessID, &item.Status, &item.CreatedAt,
			&item.Business.ID, &item.Business.CompanyName,
			&item.Business.Industry, &item.Business.YearEstablished,
			&item.Business.Headquarters, &item.Business.Website,
			&item.Business.FranchiseName, &item.Business.FranchiseDescription,
			&item.Business.InvestmentRange, &item.Business.FranchiseFee,
			&item.Business.RoyaltyFee, &item.Business.Email, &documents,
			&item.Business.IsAgreed, &item.Business.Status,
			&item.Business.CreatedAt, &item.Business.UpdatedAt,
		)
		if err != nil {
			return nil, stderrors.NewPersistenceError(err)
		}
		item.Business.FinancialDocuments = documents.String
		pending = append(pending, item)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}

	return pending, nil
}

// Approve transitions the notification and its business to approved.
func (s *Service) Approve(ctx context.Context, notificationID string) (*DecisionOutput, error) {
	return s.decide(ctx, notificationID, models.StatusApproved, mailer.TypeBusinessApproved)
}

// Reject transitions the notification and its business to rejected.
func (s *Service) Reject(ctx context.Context, notificationID string) (*DecisionOutput, error) {
	return s.decide(ctx, notificationID, models.StatusRejected, mailer.TypeBusinessRejected)
}

// decide applies a terminal status to the business and notification inside a
// single transaction, business first. Re-invoking on an already-terminal
// notification re-applies the status; last write wins by design. The decision
// email is enqueued only after commit, so delivery failure can never roll back
// or diverge the persisted state.
func (s *Service) decide(ctx context.Context, notificationID, status, emailType string) (*DecisionOutput, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	defer tx.Rollback()

	var businessID, companyName, franchiseName, email, current string
	err = tx.QueryRowContext(ctx, `
		SELECT b.id, b.company_name, b.franchise_name, b.email, n.status
		FROM notifications n
		JOIN businesses b ON b.id = n.business_id
		WHERE n.id = $1`,
		notificationID,
	).Scan(&businessID, &companyName, &franchiseName, &email, &current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, stderrors.NewNotFoundError("notification", notificationID)
		}
		return nil, stderrors.NewPersistenceError(err)
	}

	if models.IsTerminalStatus(current) {
		s.logger.Warn("re-deciding an already decided notification", map[string]interface{}{
			"notificationId": notificationID,
			"currentStatus":  current,
			"newStatus":      status,
		})
	}

	decidedAt := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx, `
		UPDATE businesses SET status = $1, updated_at = $2 WHERE id = $3`,
		status, decidedAt, businessID,
	); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE notifications SET status = $1 WHERE id = $2`,
		status, notificationID,
	); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}

	s.writeAuditLog(ctx, notificationID, businessID, status, decidedAt)

	metrics.DecisionsTotal.WithLabelValues(status).Inc()
	s.logger.Info("decision applied", map[string]interface{}{
		"notificationId": notificationID,
		"businessId":     businessID,
		"status":         status,
	})

	if s.mail != nil {
		s.mail.Enqueue(mailer.Job{
			Type:      emailType,
			Recipient: email,
			Data: map[string]interface{}{
				"companyName":   companyName,
				"franchiseName": franchiseName,
			},
		})
	}

	return &DecisionOutput{
		NotificationID: notificationID,
		BusinessID:     businessID,
		Status:         status,
		DecidedAt:      decidedAt,
	}, nil
}

// writeAuditLog records the decision event. Non-critical, never fatal.
func (s *Service) writeAuditLog(ctx context.Context, notificationID, businessID, status, decidedAt string) {
	details, err := json.Marshal(map[string]interface{}{
		"notificationId": notificationID,
		"status":         status,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fmt.Sprintf("business_%s", status),
		"business",
		businessID,
		details,
		decidedAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"businessId": businessID,
		})
	}
}
