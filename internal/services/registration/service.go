// Package registration accepts new franchise listing submissions and queues
// them for admin review.
package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"time"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/common/metrics"
	"franchisehub-api/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// FileSaver stores an uploaded document and returns its public path.
type FileSaver interface {
	Save(originalName string, r io.Reader) (string, error)
}

// BusinessIndexer mirrors new registrations into the search index.
// Indexing is best-effort; a nil indexer disables it.
type BusinessIndexer interface {
	IndexBusiness(ctx context.Context, b models.Business) error
}

type Service struct {
	config  *Config
	db      *sql.DB
	files   FileSaver
	indexer BusinessIndexer
	logger  logger.Logger
}

func NewService(config *Config, db *sql.DB, files FileSaver, indexer BusinessIndexer, log logger.Logger) *Service {
	return &Service{
		config:  config,
		db:      db,
		files:   files,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"service": "registration"}),
	}
}

// Execute validates and persists a new business listing with status pending
// and creates exactly one notification referencing it. The business insert
// must succeed before the notification insert is attempted, so a duplicate
// email never produces an orphan notification.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, stderrors.NewValidationError(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	documentPath := ""
	if input.Document != nil {
		path, err := s.files.Save(input.Document.Filename, input.Document.Content)
		if err != nil {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return nil, stderrors.NewUploadRejectedError(err.Error())
		}
		documentPath = path
	}

	now := time.Now().UTC().Format(time.RFC3339)
	business := models.Business{
		ID:                   uuid.New().String(),
		CompanyName:          input.CompanyName,
		Industry:             input.Industry,
		YearEstablished:      input.YearEstablished,
		Headquarters:         input.Headquarters,
		Website:              input.Website,
		FranchiseName:        input.FranchiseName,
		FranchiseDescription: input.FranchiseDescription,
		InvestmentRange:      input.InvestmentRange,
		FranchiseFee:         input.FranchiseFee,
		RoyaltyFee:           input.RoyaltyFee,
		Email:                input.Email,
		FinancialDocuments:   documentPath,
		IsAgreed:             input.IsAgreed,
		Status:               models.StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (
			id, company_name, industry, year_established, headquarters, website,
			franchise_name, franchise_description, investment_range,
			franchise_fee, royalty_fee, email, financial_documents, is_agreed,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`,
		business.ID,
		business.CompanyName,
		business.Industry,
		business.YearEstablished,
		business.Headquarters,
		business.Website,
		business.FranchiseName,
		business.FranchiseDescription,
		business.InvestmentRange,
		business.FranchiseFee,
		business.RoyaltyFee,
		business.Email,
		business.FinancialDocuments,
		business.IsAgreed,
		business.Status,
		now,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, stderrors.NewDuplicateEmailError(input.Email)
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, stderrors.NewPersistenceError(err)
	}

	notificationID := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, business_id, status, created_at)
		VALUES ($1, $2, $3, $4)`,
		notificationID,
		business.ID,
		models.StatusPending,
		now,
	)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, stderrors.NewPersistenceError(err)
	}

	s.writeAuditLog(ctx, business, now)

	if s.indexer != nil {
		if err := s.indexer.IndexBusiness(ctx, business); err != nil {
			s.logger.Warn("search index update failed", map[string]interface{}{
				"businessId": business.ID,
				"error":      err,
			})
		}
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.logger.Info("business registered", map[string]interface{}{
		"businessId":     business.ID,
		"notificationId": notificationID,
		"companyName":    business.CompanyName,
		"industry":       business.Industry,
	})

	return &Output{
		Business:       business,
		NotificationID: notificationID,
	}, nil
}

// writeAuditLog records the registration event. Non-critical, never fatal.
func (s *Service) writeAuditLog(ctx context.Context, business models.Business, createdAt string) {
	details, err := json.Marshal(map[string]interface{}{
		"companyName":   business.CompanyName,
		"franchiseName": business.FranchiseName,
		"industry":      business.Industry,
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"business_registered",
		"business",
		business.ID,
		details,
		createdAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"businessId": business.ID,
		})
	}
}

// ListBusinesses returns every business record; clients filter by status or
// industry themselves.
func (s *Service) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_name, industry, year_established, headquarters,
		       website, franchise_name, franchise_description, investment_range,
		       franchise_fee, royalty_fee, email, financial_documents, is_agreed,
		       status, created_at, updated_at
		FROM businesses`)
	if err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	defer rows.Close()

	businesses := []models.Business{}
	for rows.Next() {
		var b models.Business
		var documents sql.NullString
		err := rows.Scan(
			&b.ID, &b.CompanyName, &b.Industry, &b.YearEstablished,
			&b.Headquarters, &b.Website, &b.FranchiseName,
			&b.FranchiseDescription, &b.InvestmentRange, &b.FranchiseFee,
			&b.RoyaltyFee, &b.Email, &documents, &b.IsAgreed, &b.Status,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, stderrors.NewPersistenceError(err)
		}
		b.FinancialDocuments = documents.String
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}

	return businesses, nil
}
