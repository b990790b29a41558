package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nuwanperera/corebank/internal/models"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/database"
	"github.com/shopspring/decimal"
)

// stubTx satisfies pgx.Tx for in-memory fakes. Only Exec is ever called
// directly by the services (SET LOCAL lock_timeout); everything else goes
// through the repository fakes.
type stubTx struct {
	pgx.Tx
}

func (stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

// recordingTx keeps the SQL of every Exec call, in order.
type recordingTx struct {
	stubTx
	mu   sync.Mutex
	sqls []string
}

func (r *recordingTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sqls = append(r.sqls, sql)
	return pgconn.CommandTag{}, nil
}

func (r *recordingTx) executed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sqls))
	copy(out, r.sqls)
	return out
}

// fakeTxRunner serializes transactions with a mutex, modeling the mutual
// exclusion that row locks provide in the real database.
type fakeTxRunner struct {
	mu sync.Mutex
	tx pgx.Tx
}

var _ database.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tx != nil {
		return fn(ctx, r.tx)
	}
	return fn(ctx, stubTx{})
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
}

func (f *fakeAccountRepo) put(account models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = &account
}

func (f *fakeAccountRepo) balance(id uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id].Balance
}

func (f *fakeAccountRepo) Create(ctx context.Context, tx pgx.Tx, account models.Account) (pgconn.CommandTag, error) {
	f.put(account)
	return pgconn.CommandTag{}, nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, db *database.DB, accountID uuid.UUID) (models.Account, error) {
	return f.find(accountID)
}

func (f *fakeAccountRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (models.Account, error) {
	return f.find(accountID)
}

func (f *fakeAccountRepo) find(accountID uuid.UUID) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return models.Account{}, pgx.ErrNoRows
	}
	return *account, nil
}

func (f *fakeAccountRepo) FindByUserAndTypeForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, accountType pkg.AccountType) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.UserID == userID && account.Type == accountType {
			return *account, nil
		}
	}
	return models.Account{}, pgx.ErrNoRows
}

func (f *fakeAccountRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, account := range f.accounts {
		if account.UserID == userID {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Balance = balance
	return nil
}

func (f *fakeAccountRepo) UpdateStatus(ctx context.Context, db *database.DB, accountID uuid.UUID, status pkg.AccountStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Status = status
	return nil
}

func (f *fakeAccountRepo) UpdateName(ctx context.Context, db *database.DB, accountID uuid.UUID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return pgx.ErrNoRows
	}
	account.Name = name
	return nil
}

type fakeTransactionRepo struct {
	mu   sync.Mutex
	rows []models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn models.Transaction) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, txn)
	return pgconn.CommandTag{}, nil
}

func (f *fakeTransactionRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

// SumByAccount mirrors the SQL aggregate: each row referencing the account,
// via either side, is counted once.
func (f *fakeTransactionRepo) SumByAccount(ctx context.Context, db *database.DB, accountID uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, row := range f.rows {
		if (row.FromAccountID != nil && *row.FromAccountID == accountID) ||
			(row.ToAccountID != nil && *row.ToAccountID == accountID) {
			sum = sum.Add(row.Amount)
		}
	}
	return sum, nil
}

func (f *fakeTransactionRepo) all() []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Transaction, len(f.rows))
	copy(out, f.rows)
	return out
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*models.Bill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[uuid.UUID]*models.Bill)}
}

func (f *fakeBillRepo) put(bill models.Bill) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bills[bill.ID] = &bill
}

func (f *fakeBillRepo) CreateBatch(ctx context.Context, tx pgx.Tx, bills []models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, bill := range bills {
		b := bill
		f.bills[b.ID] = &b
	}
	return nil
}

func (f *fakeBillRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, billID uuid.UUID) (models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bill, ok := f.bills[billID]
	if !ok {
		return models.Bill{}, pgx.ErrNoRows
	}
	return *bill, nil
}

func (f *fakeBillRepo) MarkPaid(ctx context.Context, tx pgx.Tx, billID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bill, ok := f.bills[billID]
	if !ok {
		return pgx.ErrNoRows
	}
	bill.Status = pkg.BillStatusPaid
	return nil
}

func (f *fakeBillRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Bill
	for _, bill := range f.bills {
		if bill.UserID == userID {
			out = append(out, *bill)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeBillRepo) CountByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, bill := range f.bills {
		if bill.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeLoanRepo struct {
	mu    sync.Mutex
	loans []models.Loan
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{}
}

func (f *fakeLoanRepo) Create(ctx context.Context, tx pgx.Tx, loan models.Loan) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loans = append(f.loans, loan)
	return pgconn.CommandTag{}, nil
}

func (f *fakeLoanRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Loan
	for _, loan := range f.loans {
		if loan.UserID == userID {
			out = append(out, loan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx pgx.Tx, user models.User) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = &user
	return pgconn.CommandTag{}, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, db *database.DB, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return *user, nil
		}
	}
	return models.User{}, pgx.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, db *database.DB, userID uuid.UUID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, pgx.ErrNoRows
	}
	return *user, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, db *database.DB, userID uuid.UUID, name, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Name = name
	user.Phone = phone
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, db *database.DB, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*models.Card
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[uuid.UUID]*models.Card)}
}

func (f *fakeCardRepo) Create(ctx context.Context, tx pgx.Tx, card models.Card) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.ID] = &card
	return pgconn.CommandTag{}, nil
}

func (f *fakeCardRepo) ListByUser(ctx context.Context, db *database.DB, userID uuid.UUID) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Card
	for _, card := range f.cards {
		if card.UserID == userID {
			out = append(out, *card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCardRepo) UpdateStatus(ctx context.Context, db *database.DB, cardID uuid.UUID, status pkg.CardStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok {
		return pgx.ErrNoRows
	}
	card.Status = status
	return nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uuid.UUID)}
}

func (f *fakeSessionStore) Create(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.sessions[token]
	if !ok {
		return uuid.Nil, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "session not found", nil)
	}
	return userID, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

// capturingPublisher records ledger events in order.
type capturingPublisher struct {
	mu     sync.Mutex
	events []views.LedgerEvent
}

func (p *capturingPublisher) Publish(event views.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() {}

func (p *capturingPublisher) all() []views.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]views.LedgerEvent, len(p.events))
	copy(out, p.events)
	return out
}
