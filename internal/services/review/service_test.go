package review

import (
	"context"
	"testing"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/mailer"
	"franchisehub-api/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	jobs []mailer.Job
}

func (f *fakeEnqueuer) Enqueue(job mailer.Job) {
	f.jobs = append(f.jobs, job)
}

func newTestService(t *testing.T, mail MailEnqueuer) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(db, mail, logger.NewTestLogger(t)), mock
}

func expectDecisionTx(mock sqlmock.Sqlmock, status string) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT b.id, b.company_name, b.franchise_name, b.email, n.status").
		WithArgs("n-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "franchise_name", "email", "status"}).
			AddRow("b-1", "Crust & Co", "Crust & Co Pizzeria", "owner@crustandco.example", models.StatusPending))
	mock.ExpectExec("UPDATE businesses SET status").
		WithArgs(status, sqlmock.AnyArg(), "b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE notifications SET status").
		WithArgs(status, "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestApprove(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock := newTestService(t, mail)

	expectDecisionTx(mock, models.StatusApproved)

	output, err := svc.Approve(context.Background(), "n-1")
	require.NoError(t, err)

	assert.Equal(t, "n-1", output.NotificationID)
	assert.Equal(t, "b-1", output.BusinessID)
	assert.Equal(t, models.StatusApproved, output.Status)
	assert.NotEmpty(t, output.DecidedAt)

	require.Len(t, mail.jobs, 1)
	assert.Equal(t, mailer.TypeBusinessApproved, mail.jobs[0].Type)
	assert.Equal(t, "owner@crustandco.example", mail.jobs[0].Recipient)
	assert.Equal(t, "Crust & Co", mail.jobs[0].Data["companyName"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReject(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock := newTestService(t, mail)

	expectDecisionTx(mock, models.StatusRejected)

	output, err := svc.Reject(context.Background(), "n-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, output.Status)
	require.Len(t, mail.jobs, 1)
	assert.Equal(t, mailer.TypeBusinessRejected, mail.jobs[0].Type)
}

func TestDecideUnknownNotification(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock := newTestService(t, mail)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT b.id, b.company_name, b.franchise_name, b.email, n.status").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "franchise_name", "email", "status"}))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeNotFound, stderrors.Code(err))

	// No updates run and no email goes out for an unknown id.
	assert.Empty(t, mail.jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideIsIdempotentOnTerminalNotification(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock := newTestService(t, mail)

	// Approving twice re-applies the same terminal state; the second call
	// succeeds and sends a second email rather than failing.
	expectDecisionTx(mock, models.StatusApproved)
	expectDecisionTx(mock, models.StatusApproved)

	_, err := svc.Approve(context.Background(), "n-1")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), "n-1")
	require.NoError(t, err)

	assert.Len(t, mail.jobs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending(t *testing.T) {
	svc, mock := newTestService(t, nil)

	columns := []string{
		"n_id", "business_id", "n_status", "n_created_at",
		"id", "company_name", "industry", "year_established", "headquarters",
		"website", "franchise_name", "franchise_description", "investment_range",
		"franchise_fee", "royalty_fee", "email", "financial_documents",
		"is_agreed", "status", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(columns).
		AddRow("n-1", "b-1", models.StatusPending, "2026-01-10T12:00:00Z",
			"b-1", "Crust & Co", "Food & Beverage", "2015", "Austin, TX", "",
			"Crust & Co Pizzeria", "Pizza.", "$100k-$250k", "$35,000", "6%",
			"owner@crustandco.example", nil, true, models.StatusPending,
			"2026-01-10T12:00:00Z", "2026-01-10T12:00:00Z")

	mock.ExpectQuery("FROM notifications n").
		WithArgs(models.StatusPending).
		WillReturnRows(rows)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	assert.Equal(t, "n-1", pending[0].ID)
	assert.Equal(t, "b-1", pending[0].Business.ID)
	assert.Equal(t, "Crust & Co", pending[0].Business.CompanyName)
	assert.Equal(t, "", pending[0].Business.FinancialDocuments)
}

func TestListPendingEmpty(t *testing.T) {
	svc, mock := newTestService(t, nil)

	mock.ExpectQuery("FROM notifications n").
		WithArgs(models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pending)
	assert.Empty(t, pending)
}
