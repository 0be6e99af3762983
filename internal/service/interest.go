package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
	"goldloan-backend/internal/ledger"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/notify"
	"goldloan-backend/internal/repository"
)

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeApplied
	outcomeArchived
)

type interestService struct {
	repo     repository.CustomerRepository
	txm      repository.TxManager
	notifier notify.Sink
	settings Settings
}

func NewInterestService(
	repo repository.CustomerRepository,
	txm repository.TxManager,
	notifier notify.Sink,
	settings Settings,
) InterestService {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &interestService{
		repo:     repo,
		txm:      txm,
		notifier: notifier,
		settings: settings.withDefaults(),
	}
}

func (s *interestService) Today() time.Time {
	return s.settings.today()
}

func (s *interestService) ApplyDailyInterestToAll(ctx context.Context, asOf time.Time) (*domain.BatchResult, error) {
	asOf = interest.CivilDate(asOf)
	result := &domain.BatchResult{RunID: uuid.NewString(), AsOf: asOf}
	log := logger.WithRun(result.RunID)
	log.Info("Applying daily interest", "asOf", asOf.Format(interest.DateLayout), "rate", s.settings.MonthlyRatePercent)

	candidates, err := s.repo.FindEligibleForInterest(ctx, asOf)
	if err != nil {
		log.Error("Failed to select customers for interest", "error", err)
		return nil, err
	}

	var due []domain.Customer
	for _, c := range candidates {
		if interest.IsDue(c.LentDate, c.LastInterestDate, asOf) {
			due = append(due, c)
		}
	}
	result.Eligible = len(due)

	var (
		mu       sync.Mutex
		archived []string
		g        errgroup.Group
	)
	g.SetLimit(s.settings.BatchConcurrency)

	for _, c := range due {
		id, name := c.ID, c.Name
		g.Go(func() error {
			clog := logger.WithCustomer(log, id)
			res, err := s.applyOne(ctx, id, asOf, clog)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				clog.Error("Daily interest failed", "error", err)
			case res == outcomeSkipped:
				result.Skipped++
			default:
				result.Applied++
				if res == outcomeArchived {
					result.Archived++
					archived = append(archived, name)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Daily interest run finished",
		"eligible", result.Eligible, "applied", result.Applied, "skipped", result.Skipped,
		"failed", result.Failed, "archived", result.Archived)

	s.notifier.Publish(ctx, notify.InterestApplied(result.Applied))
	for _, name := range archived {
		s.notifier.Publish(ctx, notify.CustomerRemoved(name, domain.ArchiveReasonTargetReached))
	}
	return result, ctx.Err()
}

// applyOne posts one customer's daily interest in its own unit of work. The
// customer is re-read so a concurrent run or edit since selection is seen.
func (s *interestService) applyOne(ctx context.Context, id string, asOf time.Time, log *slog.Logger) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcomeSkipped, err
	}

	res := outcomeSkipped
	err := s.txm.WithinTx(ctx, func(repo repository.CustomerRepository) error {
		c, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Debug("Customer gone before interest was applied")
				return nil
			}
			return err
		}
		if c.AccountStatus != domain.AccountStatusActive || !c.AutoInterestEnabled {
			return nil
		}
		if c.CurrentBalance <= 0 {
			log.Debug("Balance already settled, nothing accrues")
			return nil
		}

		totals, err := repo.LedgerTotals(ctx, id)
		if err != nil {
			return err
		}
		if err := ledger.CheckConsistency(c, totals); err != nil {
			return err
		}

		before := c.CurrentBalance
		tx, err := ledger.ApplyDailyInterest(c, asOf, s.settings.MonthlyRatePercent)
		if errors.Is(err, ledger.ErrNotDue) || errors.Is(err, ledger.ErrNoAccrual) {
			log.Debug("Nothing to post", "reason", err)
			return nil
		}
		if err != nil {
			return err
		}

		if err := repo.Save(ctx, c); err != nil {
			return err
		}
		if err := repo.AppendTransaction(ctx, id, &tx); err != nil {
			return err
		}
		if err := repo.LogInterest(ctx, &domain.InterestLogEntry{
			CustomerID:     id,
			InterestAmount: tx.Amount,
			AppliedDate:    asOf,
			BalanceBefore:  before,
			BalanceAfter:   c.CurrentBalance,
		}); err != nil {
			return err
		}
		res = outcomeApplied

		if c.TargetReached() {
			// Archive reloads the full ledger for the snapshot.
			c.Transactions = nil
			if _, err := repo.Archive(ctx, c, domain.ArchiveReasonTargetReached); err != nil {
				return err
			}
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			log.Info("Target amount reached, customer archived", "balance", c.CurrentBalance, "target", c.TargetAmount)
			res = outcomeArchived
		}
		return nil
	})

	if errors.Is(err, domain.ErrConcurrentUpdate) {
		log.Warn("Customer changed during interest posting, skipping")
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeSkipped, err
	}
	return res, nil
}
