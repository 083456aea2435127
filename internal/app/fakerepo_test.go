package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
	"github.com/abbasmsh1/Banker/internal/store"
)

// fakeRepo is an in-memory store.Repository for service tests. It mirrors the
// Postgres implementation's semantics: sentinel errors, balance checks inside
// ExecuteTransfer, and both ledger rows per transfer.
type fakeRepo struct {
	users         map[uuid.UUID]*domain.User
	accounts      map[uuid.UUID]*domain.Account
	transactions  []domain.Transaction
	beneficiaries []domain.Beneficiary
	summaries     []domain.DailySummary

	// createAccountErrs is drained one error per CreateAccount call before
	// the real insert happens, for collision-retry tests.
	createAccountErrs []error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[uuid.UUID]*domain.User),
		accounts: make(map[uuid.UUID]*domain.Account),
	}
}

func (f *fakeRepo) addUser(username string, isAdmin bool) *domain.User {
	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeRepo) addAccount(userID uuid.UUID, iban, address string, balance decimal.Decimal) *domain.Account {
	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  userID,
		IBAN:    iban,
		Address: address,
		Balance: balance,
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeRepo) CreateUser(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return store.ErrDuplicateUsername
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeRepo) FindUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeRepo) CreateAccount(_ context.Context, account *domain.Account) error {
	if len(f.createAccountErrs) > 0 {
		err := f.createAccountErrs[0]
		f.createAccountErrs = f.createAccountErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range f.accounts {
		if existing.UserID == account.UserID {
			return store.ErrAccountExists
		}
		if existing.IBAN == account.IBAN || existing.Address == account.Address {
			return store.ErrIdentifierConflict
		}
	}
	account.ID = uuid.New()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeRepo) FindAccountByUserID(_ context.Context, userID uuid.UUID) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.UserID == userID {
			return account, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) FindAccountByIBAN(_ context.Context, iban string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.IBAN == iban {
			return account, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) FindAccountByAddress(_ context.Context, address string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.Address == address {
			return account, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) FindAccountByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if account, ok := f.accounts[id]; ok {
		return account, nil
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) ListAccounts(_ context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeRepo) CreditAccount(_ context.Context, iban string, amount decimal.Decimal) (decimal.Decimal, error) {
	for _, account := range f.accounts {
		if account.IBAN == iban {
			account.Balance = account.Balance.Add(amount)
			return account.Balance, nil
		}
	}
	return decimal.Zero, store.ErrAccountNotFound
}

func (f *fakeRepo) ExecuteTransfer(_ context.Context, senderAccountID, recipientAccountID uuid.UUID, amount decimal.Decimal, at time.Time) (*domain.Transaction, error) {
	sender, ok := f.accounts[senderAccountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	recipient, ok := f.accounts[recipientAccountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	if sender.Balance.LessThan(amount) {
		return nil, store.ErrInsufficientFunds
	}
	sender.Balance = sender.Balance.Sub(amount)
	recipient.Balance = recipient.Balance.Add(amount)

	recipientIBAN := recipient.IBAN
	recipientAddress := recipient.Address
	sendRow := domain.Transaction{
		ID:                  uuid.New(),
		AccountID:           sender.ID,
		Direction:           domain.DirectionSend,
		Amount:              amount,
		CounterpartyIBAN:    &recipientIBAN,
		CounterpartyAddress: &recipientAddress,
		CreatedAt:           at,
	}
	senderIBAN := sender.IBAN
	senderAddress := sender.Address
	receiveRow := domain.Transaction{
		ID:                  uuid.New(),
		AccountID:           recipient.ID,
		Direction:           domain.DirectionReceive,
		Amount:              amount,
		CounterpartyIBAN:    &senderIBAN,
		CounterpartyAddress: &senderAddress,
		CreatedAt:           at,
	}
	f.transactions = append(f.transactions, sendRow, receiveRow)
	return &sendRow, nil
}

func (f *fakeRepo) CreateBeneficiary(_ context.Context, beneficiary *domain.Beneficiary) error {
	beneficiary.ID = uuid.New()
	beneficiary.CreatedAt = time.Now().UTC()
	f.beneficiaries = append(f.beneficiaries, *beneficiary)
	return nil
}

func (f *fakeRepo) ListBeneficiariesByUserID(_ context.Context, userID uuid.UUID) ([]domain.Beneficiary, error) {
	out := []domain.Beneficiary{}
	for _, b := range f.beneficiaries {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListTransactionsByAccountID(_ context.Context, accountID uuid.UUID, since *time.Time) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, tx := range f.transactions {
		if tx.AccountID != accountID {
			continue
		}
		if since != nil && tx.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, tx)
	}
	// Newest first, matching the SQL implementation.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRepo) TotalBalance(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, account := range f.accounts {
		total = total.Add(account.Balance)
	}
	return total, nil
}

func (f *fakeRepo) TotalSentSince(_ context.Context, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range f.transactions {
		if tx.Direction == domain.DirectionSend && !tx.CreatedAt.Before(since) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

func (f *fakeRepo) InsertDailySummary(_ context.Context, summary *domain.DailySummary) error {
	f.summaries = append(f.summaries, *summary)
	return nil
}

var _ store.Repository = (*fakeRepo)(nil)

func newTestService(repo store.Repository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Minute))
}
