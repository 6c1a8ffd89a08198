package auth

import (
	"context"
	"testing"
	"time"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/mailer"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeEnqueuer struct {
	jobs []mailer.Job
}

func (f *fakeEnqueuer) Enqueue(job mailer.Job) {
	f.jobs = append(f.jobs, job)
}

func testConfig() *Config {
	return &Config{
		JWTSecret:    "test-secret",
		Issuer:       "franchisehub-test",
		TokenTTL:     time.Hour,
		ResetCodeTTL: 10 * time.Minute,
		AdminEmails:  []string{"admin@franchisehub.io"},
	}
}

func newTestService(t *testing.T, mail MailEnqueuer) (*Service, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewService(testConfig(), db, rdb, mail, logger.NewTestLogger(t))
	return svc, mock, mr
}

func TestRegister(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.False(t, user.IsAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterAdminEmail(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Admin",
		Email:    "admin@franchisehub.io",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeValidation, stderrors.Code(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeDuplicateEmail, stderrors.Code(err))
}

func loginRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "is_admin", "created_at"}).
		AddRow("u-1", "Dana", "dana@example.com", string(hash), false, "2026-01-10T12:00:00Z")
}

func TestLogin(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("dana@example.com").
		WillReturnRows(loginRow(t, "correct horse"))

	output, err := svc.Login(context.Background(), &LoginInput{
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, output.Token)
	assert.Equal(t, "u-1", output.User.ID)

	claims, err := svc.Tokens().ValidateToken(output.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("dana@example.com").
		WillReturnRows(loginRow(t, "correct horse"))

	_, err := svc.Login(context.Background(), &LoginInput{
		Email:    "dana@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeAuthentication, stderrors.Code(err))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock, _ := newTestService(t, nil)

	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Login(context.Background(), &LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)

	// Unknown email and wrong password must be indistinguishable.
	assert.Equal(t, stderrors.ErrCodeAuthentication, stderrors.Code(err))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	token, err := svc.Tokens().GenerateToken("u-1", "dana@example.com", false, time.Hour)
	require.NoError(t, err)
	claims, err := svc.Tokens().ValidateToken(token)
	require.NoError(t, err)

	assert.False(t, svc.IsRevoked(context.Background(), claims.ID))

	require.NoError(t, svc.Logout(context.Background(), claims))
	assert.True(t, svc.IsRevoked(context.Background(), claims.ID))
}

func TestForgotPasswordStoresCodeAndSendsMail(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock, mr := newTestService(t, mail)

	mock.ExpectQuery("SELECT id FROM users").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	require.NoError(t, svc.ForgotPassword(context.Background(), "dana@example.com"))

	stored, err := mr.Get("reset:dana@example.com")
	require.NoError(t, err)
	assert.Len(t, stored, 6)

	require.Len(t, mail.jobs, 1)
	assert.Equal(t, mailer.TypePasswordReset, mail.jobs[0].Type)
	assert.Equal(t, stored, mail.jobs[0].Data["code"])
	assert.Equal(t, 10, mail.jobs[0].Data["ttlMinutes"])

	// Code has the configured TTL.
	assert.InDelta(t, (10 * time.Minute).Seconds(), mr.TTL("reset:dana@example.com").Seconds(), 1)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	mail := &fakeEnqueuer{}
	svc, mock, mr := newTestService(t, mail)

	mock.ExpectQuery("SELECT id FROM users").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))

	assert.Empty(t, mail.jobs)
	assert.False(t, mr.Exists("reset:ghost@example.com"))
}

func TestResetPassword(t *testing.T) {
	svc, mock, mr := newTestService(t, nil)

	require.NoError(t, mr.Set("reset:dana@example.com", "123456"))

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(sqlmock.AnyArg(), "dana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ResetPassword(context.Background(), &ResetInput{
		Email:       "dana@example.com",
		Code:        "123456",
		NewPassword: "a new password",
	})
	require.NoError(t, err)

	// Single use: the code is gone after a successful reset.
	assert.False(t, mr.Exists("reset:dana@example.com"))
}

func TestResetPasswordWrongCode(t *testing.T) {
	svc, mock, mr := newTestService(t, nil)

	require.NoError(t, mr.Set("reset:dana@example.com", "123456"))

	err := svc.ResetPassword(context.Background(), &ResetInput{
		Email:       "dana@example.com",
		Code:        "654321",
		NewPassword: "a new password",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeAuthentication, stderrors.Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPasswordExpiredCode(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	err := svc.ResetPassword(context.Background(), &ResetInput{
		Email:       "dana@example.com",
		Code:        "123456",
		NewPassword: "a new password",
	})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeAuthentication, stderrors.Code(err))
}
