package service

import (
	"context"
	"time"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/ledger"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/notify"
	"goldloan-backend/internal/repository"
)

type customerService struct {
	repo     repository.CustomerRepository
	txm      repository.TxManager
	notifier notify.Sink
	settings Settings
}

func NewCustomerService(
	repo repository.CustomerRepository,
	txm repository.TxManager,
	notifier notify.Sink,
	settings Settings,
) CustomerService {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &customerService{
		repo:     repo,
		txm:      txm,
		notifier: notifier,
		settings: settings.withDefaults(),
	}
}

// newCustomer maps validated input onto an aggregate with no ledger yet.
func (s *customerService) newCustomer(in CustomerInput, lentDate time.Time) *domain.Customer {
	auto := true
	if in.AutoInterestEnabled != nil {
		auto = *in.AutoInterestEnabled
	}
	c := &domain.Customer{
		Name:                in.Name,
		Email:               in.Email,
		Phone:               in.Phone,
		Address:             in.Address,
		IDType:              in.IDType,
		IDNumber:            in.IDNumber,
		GoldWeight:          in.GoldWeight,
		GoldRate:            in.GoldRate,
		LentAmount:          domain.RoundMoney(in.LentAmount),
		TargetAmount:        domain.RoundMoney(in.TargetAmount),
		LentDate:            lentDate,
		AccountStatus:       domain.AccountStatusActive,
		AutoInterestEnabled: auto,
	}
	c.SetBalance(c.LentAmount)
	for _, img := range in.Images {
		c.GoldImages = append(c.GoldImages, domain.GoldImage{
			Name:        img.Name,
			ContentType: img.ContentType,
			Size:        int64(len(img.Data)),
			Data:        img.Data,
		})
	}
	return c
}

func lendingDescription(in CustomerInput) string {
	if in.GoldWeight > 0 && in.GoldRate > 0 {
		return ledger.LendingDescription(in.GoldWeight, in.GoldRate)
	}
	return ""
}

func (s *customerService) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	logger.EnterMethod("customerService.CreateCustomer", "name", in.Name, "lentAmount", in.LentAmount)

	if err := validateInput(in); err != nil {
		logger.ExitMethodWithError("customerService.CreateCustomer", err)
		return nil, err
	}
	today := s.settings.today()
	lentDate, err := parseCivilDate("lent_date", in.LentDate, today)
	if err != nil {
		return nil, err
	}
	if lentDate.After(today) {
		return nil, domain.NewValidationError("lent_date", "cannot be in the future")
	}

	c := s.newCustomer(in, lentDate)
	c.Transactions = ledger.BuildInitialLedger(c.LentAmount, lentDate, lendingDescription(in))
	if err := ledger.ValidateOpening(c.Transactions); err != nil {
		return nil, err
	}

	if err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		return repo.Create(ctx, c)
	}); err != nil {
		logger.ExitMethodWithError("customerService.CreateCustomer", err)
		return nil, err
	}

	s.notifier.Publish(ctx, notify.CustomerAdded(c.Name))
	logger.ExitMethod("customerService.CreateCustomer", "customerID", c.ID)
	return c, nil
}

// backfill validates a historical entry and reconstructs its ledger.
func (s *customerService) backfill(in HistoricalCustomerInput) (*domain.Customer, *ledger.Backfill, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	if in.LentDate == "" {
		return nil, nil, domain.NewValidationError("lent_date", "is required")
	}

	today := s.settings.today()
	lentDate, err := parseCivilDate("lent_date", in.LentDate, today)
	if err != nil {
		return nil, nil, err
	}
	asOf, err := parseCivilDate("as_of_date", in.AsOfDate, today)
	if err != nil {
		return nil, nil, err
	}
	if asOf.Before(lentDate) {
		return nil, nil, domain.NewValidationError("as_of_date", "cannot be before the lent date")
	}
	if asOf.After(today) {
		return nil, nil, domain.NewValidationError("as_of_date", "cannot be in the future")
	}

	rate := in.MonthlyRatePercent
	if rate <= 0 {
		rate = s.settings.MonthlyRatePercent
	}

	c := s.newCustomer(in.CustomerInput, lentDate)
	b := ledger.BackfillHistoricalLedger(c.LentAmount, lentDate, asOf, rate)
	if desc := lendingDescription(in.CustomerInput); desc != "" {
		b.Transactions[0].Description = desc
	}

	if err := ledger.ValidateOpening(b.Transactions); err != nil {
		return nil, nil, err
	}
	c.Transactions = b.Transactions
	c.SetBalance(b.FinalBalance)
	c.LastInterestDate = b.LastInterestDate
	return c, &b, nil
}

func (s *customerService) CreateHistoricalCustomer(ctx context.Context, in HistoricalCustomerInput) (*domain.Customer, error) {
	logger.EnterMethod("customerService.CreateHistoricalCustomer", "name", in.Name, "lentDate", in.LentDate)

	c, b, err := s.backfill(in)
	if err != nil {
		logger.ExitMethodWithError("customerService.CreateHistoricalCustomer", err)
		return nil, err
	}

	if err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		return repo.Create(ctx, c)
	}); err != nil {
		logger.ExitMethodWithError("customerService.CreateHistoricalCustomer", err)
		return nil, err
	}

	s.notifier.Publish(ctx, notify.HistoricalCustomerAdded(c.Name, len(b.Transactions)-1))
	logger.ExitMethod("customerService.CreateHistoricalCustomer", "customerID", c.ID, "finalBalance", c.CurrentBalance)
	return c, nil
}

func (s *customerService) PreviewHistorical(ctx context.Context, in HistoricalCustomerInput) (*ledger.Backfill, error) {
	_, b, err := s.backfill(in)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, *domain.CustomerSummary, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if c.Transactions, err = s.repo.ListTransactions(ctx, id); err != nil {
		return nil, nil, err
	}
	if c.GoldImages, err = s.repo.ListImages(ctx, id); err != nil {
		return nil, nil, err
	}
	summary := ledger.Summary(c, s.settings.MonthlyRatePercent)
	return c, &summary, nil
}

func (s *customerService) ListCustomers(ctx context.Context, status string) ([]domain.Customer, error) {
	st := domain.AccountStatus(status)
	if status != "" && !st.Valid() {
		return nil, domain.NewValidationError("status", "must be one of active, completed, suspended")
	}
	return s.repo.List(ctx, st)
}

func (s *customerService) ListTransactions(ctx context.Context, id string) ([]domain.Transaction, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, id)
}

// loadConsistent reads a customer inside a unit of work and refuses to build
// on a balance that disagrees with its ledger.
func loadConsistent(ctx context.Context, repo repository.CustomerRepository, id string) (*domain.Customer, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := repo.LedgerTotals(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckConsistency(c, totals); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) RecordPayment(ctx context.Context, id string, in PaymentInput) (*domain.Customer, *domain.Transaction, error) {
	logger.EnterMethod("customerService.RecordPayment", "customerID", id, "amount", in.Amount)

	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	today := s.settings.today()
	at, err := parseCivilDate("date", in.Date, today)
	if err != nil {
		return nil, nil, err
	}
	if at.After(today) {
		return nil, nil, domain.NewValidationError("date", "cannot be in the future")
	}

	var c *domain.Customer
	var tx domain.Transaction
	err = s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		var err error
		if c, err = loadConsistent(ctx, repo, id); err != nil {
			return err
		}
		// The lending entry must stay first in the ledger.
		if at.Before(c.LentDate) {
			return domain.NewValidationError("date", "cannot be before the lent date")
		}
		if tx, err = ledger.RecordPayment(c, in.Amount, at, in.Description); err != nil {
			return err
		}
		// A settled loan stops accruing.
		if c.CurrentBalance == 0 {
			logger.Debug("Loan settled", "customerID", c.ID)
			c.AccountStatus = domain.AccountStatusCompleted
		}
		if err := repo.Save(ctx, c); err != nil {
			return err
		}
		return repo.AppendTransaction(ctx, c.ID, &tx)
	})
	if err != nil {
		logger.ExitMethodWithError("customerService.RecordPayment", err, "customerID", id)
		return nil, nil, err
	}

	s.notifier.Publish(ctx, notify.PaymentReceived(c.Name, tx.Amount, c.CurrentBalance))
	logger.ExitMethod("customerService.RecordPayment", "customerID", id, "balance", c.CurrentBalance)
	return c, &tx, nil
}

func (s *customerService) ApplyManualInterest(ctx context.Context, id string) (*domain.Customer, *domain.Transaction, error) {
	var c *domain.Customer
	var tx domain.Transaction
	err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		var err error
		if c, err = loadConsistent(ctx, repo, id); err != nil {
			return err
		}
		if tx, err = ledger.RecordManualInterest(c, s.settings.MonthlyRatePercent, s.settings.today()); err != nil {
			return err
		}
		if err := repo.Save(ctx, c); err != nil {
			return err
		}
		return repo.AppendTransaction(ctx, c.ID, &tx)
	})
	if err != nil {
		logger.Error("Manual interest failed", "customerID", id, "error", err)
		return nil, nil, err
	}
	logger.Info("Manual interest applied", "customerID", id, "amount", tx.Amount, "balance", c.CurrentBalance)
	return c, &tx, nil
}

func (s *customerService) SetStatus(ctx context.Context, id, status string) (*domain.Customer, error) {
	st := domain.AccountStatus(status)
	if !st.Valid() {
		return nil, domain.NewValidationError("status", "must be one of active, completed, suspended")
	}

	var c *domain.Customer
	err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		var err error
		if c, err = repo.GetByID(ctx, id); err != nil {
			return err
		}
		c.AccountStatus = st
		return repo.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer archives and removes a settled customer.
func (s *customerService) DeleteCustomer(ctx context.Context, id string) (*domain.ArchivedCustomer, error) {
	logger.EnterMethod("customerService.DeleteCustomer", "customerID", id)

	var c *domain.Customer
	var archived *domain.ArchivedCustomer
	err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		var err error
		if c, err = repo.GetByID(ctx, id); err != nil {
			return err
		}
		if !c.CanDelete() {
			return domain.NewValidationError("current_balance", "cannot delete a customer with an outstanding balance")
		}
		if archived, err = repo.Archive(ctx, c, domain.ArchiveReasonClosed); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("customerService.DeleteCustomer", err, "customerID", id)
		return nil, err
	}

	s.notifier.Publish(ctx, notify.CustomerRemoved(c.Name, domain.ArchiveReasonClosed))
	logger.ExitMethod("customerService.DeleteCustomer", "archiveID", archived.ID)
	return archived, nil
}

func (s *customerService) ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error) {
	return s.repo.ListArchived(ctx, limit)
}
