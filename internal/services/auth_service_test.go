package services

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/nuwanperera/corebank/configs"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	svc      AuthService
	users    *fakeUserRepo
	accounts *fakeAccountRepo
	cards    *fakeCardRepo
	bills    *fakeBillRepo
	sessions *fakeSessionStore
	aesKey   []byte
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	f := &authFixture{
		users:    newFakeUserRepo(),
		accounts: newFakeAccountRepo(),
		cards:    newFakeCardRepo(),
		bills:    newFakeBillRepo(),
		sessions: newFakeSessionStore(),
		aesKey:   key,
	}
	cnf := &configs.Config{SessionTTL: time.Hour}
	f.svc = NewAuthService(zap.NewNop(), cnf, nil, &fakeTxRunner{},
		f.users, f.accounts, f.cards, f.bills, f.sessions, key)
	return f
}

func (f *authFixture) register(t *testing.T) views.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), "t1", views.RegisterRequest{
		Name:     "Nuwan Perera",
		Email:    "nuwan@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterProvisionsStarterProducts(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.register(t)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "nuwan@example.com", resp.User.Email)

	userID, err := f.svc.ResolveIdentity(context.Background(), resp.Token)
	require.NoError(t, err)

	accounts, err := f.accounts.ListByUser(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	for _, account := range accounts {
		assert.True(t, account.Balance.IsZero())
		assert.Equal(t, pkg.AccountStatusActive, account.Status)
		assert.Len(t, account.CardNumber, 16)
	}

	cards, err := f.cards.ListByUser(context.Background(), nil, userID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, "NUWAN PERERA", card.Holder)
		// Stored encrypted, never the raw masked number.
		assert.NotContains(t, card.Number, "••••")
	}

	count, err := f.bills.CountByUser(context.Background(), nil, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	_, err := f.svc.Register(context.Background(), "t1", views.RegisterRequest{
		Name:     "Other",
		Email:    "NUWAN@example.com", // email lookup is case-insensitive
		Password: "hunter22",
	})
	assertAppCode(t, err, pkg.ErrSQLDuplicateCode)
}

func TestLoginVerifiesPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	resp, err := f.svc.Login(context.Background(), "t1", views.LoginRequest{
		Email:    "nuwan@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Login(context.Background(), "t1", views.LoginRequest{
		Email:    "nuwan@example.com",
		Password: "wrong",
	})
	assertAppCode(t, err, pkg.ErrUnauthenticatedCode)

	_, err = f.svc.Login(context.Background(), "t1", views.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	assertAppCode(t, err, pkg.ErrUnauthenticatedCode)
}

func TestLogoutEndsSession(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.register(t)

	require.NoError(t, f.svc.Logout(context.Background(), "t1", resp.Token))

	_, err := f.svc.ResolveIdentity(context.Background(), resp.Token)
	assertAppCode(t, err, pkg.ErrUnauthenticatedCode)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.register(t)
	userID, err := f.svc.ResolveIdentity(context.Background(), resp.Token)
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), "t1", userID, views.ChangePasswordRequest{
		OldPassword:     "hunter22",
		NewPassword:     "correcthorse",
		ConfirmPassword: "mismatch",
	})
	assertAppCode(t, err, pkg.ErrInvalidInputCode)

	err = f.svc.ChangePassword(context.Background(), "t1", userID, views.ChangePasswordRequest{
		OldPassword:     "wrong",
		NewPassword:     "correcthorse",
		ConfirmPassword: "correcthorse",
	})
	assertAppCode(t, err, pkg.ErrUnauthenticatedCode)

	err = f.svc.ChangePassword(context.Background(), "t1", userID, views.ChangePasswordRequest{
		OldPassword:     "hunter22",
		NewPassword:     "correcthorse",
		ConfirmPassword: "correcthorse",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "t1", views.LoginRequest{
		Email:    "nuwan@example.com",
		Password: "correcthorse",
	})
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.register(t)
	userID, err := f.svc.ResolveIdentity(context.Background(), resp.Token)
	require.NoError(t, err)

	user, err := f.svc.UpdateProfile(context.Background(), "t1", userID, views.UpdateProfileRequest{
		Name:  "N. Perera",
		Phone: "+94 71 555 0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "N. Perera", user.Name)
	assert.Equal(t, "+94 71 555 0101", user.Phone)
}
