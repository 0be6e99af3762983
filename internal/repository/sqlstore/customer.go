package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/repository"
)

const customerColumns = `id, name, email, phone, address, id_type, id_number, gold_weight, gold_rate,
	lent_amount, current_balance, target_amount, lent_date, last_interest_date, account_status,
	auto_interest_enabled, version, created_at, updated_at`

type customerRepository struct {
	q executor
}

// NewCustomerRepository binds a repository to q, which is either the pool or
// an open transaction.
func NewCustomerRepository(q executor) repository.CustomerRepository {
	return &customerRepository{q: q}
}

func persistence(op string, err error) error {
	return &domain.PersistenceError{Op: op, Err: err}
}

// normalizeCustomer pins scanned timestamps to UTC; drivers disagree on the
// zone they attach to TIMESTAMP columns.
func normalizeCustomer(c *domain.Customer) {
	c.LentDate = c.LentDate.UTC()
	if c.LastInterestDate != nil {
		d := c.LastInterestDate.UTC()
		c.LastInterestDate = &d
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
}

func (r *customerRepository) FindEligibleForInterest(ctx context.Context, asOf time.Time) ([]domain.Customer, error) {
	query := r.q.Rebind(`SELECT ` + customerColumns + ` FROM customers
		WHERE account_status = ? AND auto_interest_enabled = ? AND lent_date <= ?
		AND current_balance > ?
		AND (last_interest_date IS NULL OR last_interest_date < ?)
		ORDER BY lent_date, id`)
	logger.DatabaseCall("SELECT", "customers", "filter", "eligible_for_interest", "asOf", asOf)

	var customers []domain.Customer
	err := r.q.SelectContext(ctx, &customers, query, domain.AccountStatusActive, true, asOf, 0, asOf)
	logger.DatabaseResult("SELECT", int64(len(customers)), err)
	if err != nil {
		return nil, persistence("find eligible customers", err)
	}
	for i := range customers {
		normalizeCustomer(&customers[i])
	}
	return customers, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	query := r.q.Rebind(`SELECT ` + customerColumns + ` FROM customers WHERE id = ?`)
	if err := r.q.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, persistence("get customer", err)
	}
	normalizeCustomer(&c)
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, status domain.AccountStatus) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []interface{}
	if status != "" {
		query += ` WHERE account_status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var customers []domain.Customer
	if err := r.q.SelectContext(ctx, &customers, r.q.Rebind(query), args...); err != nil {
		return nil, persistence("list customers", err)
	}
	for i := range customers {
		normalizeCustomer(&customers[i])
	}
	return customers, nil
}

// Create inserts the customer row, its opening ledger and its images.
func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerRepository.Create", "name", c.Name, "lentAmount", c.LentAmount)

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	c.CreatedAt, c.UpdatedAt = now, now

	query := r.q.Rebind(`INSERT INTO customers (` + customerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	logger.DatabaseCall("INSERT", "customers", "customerID", c.ID)
	res, err := r.q.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.IDType, c.IDNumber, c.GoldWeight, c.GoldRate,
		c.LentAmount, c.CurrentBalance, c.TargetAmount, c.LentDate, c.LastInterestDate, c.AccountStatus,
		c.AutoInterestEnabled, c.Version, c.CreatedAt, c.UpdatedAt)
	logger.DatabaseResult("INSERT", rowsAffected(res), err, "customerID", c.ID)
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Create", err)
		return persistence("create customer", err)
	}

	for i := range c.Transactions {
		if err := r.AppendTransaction(ctx, c.ID, &c.Transactions[i]); err != nil {
			logger.ExitMethodWithError("customerRepository.Create", err, "customerID", c.ID)
			return err
		}
	}
	for i := range c.GoldImages {
		if err := r.addImage(ctx, c.ID, &c.GoldImages[i]); err != nil {
			logger.ExitMethodWithError("customerRepository.Create", err, "customerID", c.ID)
			return err
		}
	}

	logger.ExitMethod("customerRepository.Create", "customerID", c.ID)
	return nil
}

// Save writes the mutable fields under an optimistic version check.
func (r *customerRepository) Save(ctx context.Context, c *domain.Customer) error {
	now := time.Now().UTC()
	query := r.q.Rebind(`UPDATE customers SET name = ?, email = ?, phone = ?, address = ?,
		current_balance = ?, target_amount = ?, last_interest_date = ?, account_status = ?,
		auto_interest_enabled = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`)

	res, err := r.q.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.Address,
		domain.NormalizeBalance(c.CurrentBalance), c.TargetAmount, c.LastInterestDate, c.AccountStatus,
		c.AutoInterestEnabled, now, c.ID, c.Version)
	logger.DatabaseResult("UPDATE", rowsAffected(res), err, "customerID", c.ID, "version", c.Version)
	if err != nil {
		return persistence("save customer", err)
	}
	if rowsAffected(res) == 0 {
		return domain.ErrConcurrentUpdate
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}

// Delete removes the customer and everything hanging off it.
func (r *customerRepository) Delete(ctx context.Context, id string) error {
	for _, table := range []string{"gold_images", "interest_log", "transactions"} {
		query := r.q.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE customer_id = ?`, table))
		if _, err := r.q.ExecContext(ctx, query, id); err != nil {
			return persistence("delete "+table, err)
		}
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM customers WHERE id = ?`), id)
	logger.DatabaseResult("DELETE", rowsAffected(res), err, "customerID", id)
	if err != nil {
		return persistence("delete customer", err)
	}
	if rowsAffected(res) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendTransaction stores tx as the customer's next ledger entry.
func (r *customerRepository) AppendTransaction(ctx context.Context, customerID string, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CustomerID = customerID

	var seq int
	seqQuery := r.q.Rebind(`SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions WHERE customer_id = ?`)
	if err := r.q.GetContext(ctx, &seq, seqQuery, customerID); err != nil {
		return persistence("next transaction seq", err)
	}
	tx.Seq = seq

	query := r.q.Rebind(`INSERT INTO transactions
		(id, customer_id, seq, type, amount, description, transaction_date, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query, tx.ID, customerID, tx.Seq, tx.Type, tx.Amount,
		tx.Description, tx.Date, tx.Balance, time.Now().UTC())
	if err != nil {
		return persistence("append transaction", err)
	}
	return nil
}

func (r *customerRepository) ListTransactions(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	query := r.q.Rebind(`SELECT id, customer_id, seq, type, amount, description, transaction_date, balance
		FROM transactions WHERE customer_id = ? ORDER BY seq`)
	var txs []domain.Transaction
	if err := r.q.SelectContext(ctx, &txs, query, customerID); err != nil {
		return nil, persistence("list transactions", err)
	}
	for i := range txs {
		if t, err := domain.ParseTransactionType(string(txs[i].Type)); err == nil {
			txs[i].Type = t
		}
		txs[i].Date = txs[i].Date.UTC()
	}
	return txs, nil
}

// LedgerTotals sums the stored ledger by type. Rows written with the legacy
// gold_loan type count as lending.
func (r *customerRepository) LedgerTotals(ctx context.Context, customerID string) (domain.LedgerTotals, error) {
	query := r.q.Rebind(`SELECT
		COALESCE(SUM(CASE WHEN type IN ('lending', 'gold_loan') THEN amount ELSE 0 END), 0) AS lent,
		COALESCE(SUM(CASE WHEN type = 'interest' THEN amount ELSE 0 END), 0) AS interest,
		COALESCE(SUM(CASE WHEN type = 'payment' THEN amount ELSE 0 END), 0) AS payments
		FROM transactions WHERE customer_id = ?`)
	var totals domain.LedgerTotals
	if err := r.q.GetContext(ctx, &totals, query, customerID); err != nil {
		return domain.LedgerTotals{}, persistence("ledger totals", err)
	}
	return totals, nil
}

func (r *customerRepository) LogInterest(ctx context.Context, entry *domain.InterestLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := r.q.Rebind(`INSERT INTO interest_log
		(id, customer_id, interest_amount, applied_date, balance_before, balance_after)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query, entry.ID, entry.CustomerID, entry.InterestAmount,
		entry.AppliedDate, entry.BalanceBefore, entry.BalanceAfter)
	if err != nil {
		return persistence("log interest", err)
	}
	return nil
}

func (r *customerRepository) addImage(ctx context.Context, customerID string, img *domain.GoldImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CustomerID = customerID
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now().UTC()
	}
	if img.Size == 0 {
		img.Size = int64(len(img.Data))
	}
	query := r.q.Rebind(`INSERT INTO gold_images
		(id, customer_id, image_name, content_type, image_size, image_data, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query, img.ID, customerID, img.Name, img.ContentType,
		img.Size, img.Data, img.UploadedAt)
	if err != nil {
		return persistence("add gold image", err)
	}
	return nil
}

func (r *customerRepository) ListImages(ctx context.Context, customerID string) ([]domain.GoldImage, error) {
	query := r.q.Rebind(`SELECT id, customer_id, image_name, content_type, image_size, image_data, uploaded_at
		FROM gold_images WHERE customer_id = ? ORDER BY uploaded_at`)
	var images []domain.GoldImage
	if err := r.q.SelectContext(ctx, &images, query, customerID); err != nil {
		return nil, persistence("list gold images", err)
	}
	return images, nil
}

// Archive writes c, with its ledger, to the deletion log. It does not delete.
func (r *customerRepository) Archive(ctx context.Context, c *domain.Customer, reason string) (*domain.ArchivedCustomer, error) {
	logger.EnterMethod("customerRepository.Archive", "customerID", c.ID, "reason", reason)

	snapshot := *c
	if snapshot.Transactions == nil {
		txs, err := r.ListTransactions(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		snapshot.Transactions = txs
	}
	// Image bytes are not copied into the backup.
	snapshot.GoldImages = nil

	data, err := json.Marshal(snapshot)
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Archive", err, "reason", "failed to marshal snapshot")
		return nil, fmt.Errorf("failed to marshal customer snapshot: %w", err)
	}

	totals, err := r.LedgerTotals(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	archived := &domain.ArchivedCustomer{
		ID:                 uuid.NewString(),
		OriginalCustomerID: c.ID,
		CustomerData:       string(data),
		DeletionReason:     reason,
		FinalBalance:       c.CurrentBalance,
		TotalInterestPaid:  domain.RoundMoney(totals.Interest),
		DeletedAt:          time.Now().UTC(),
	}
	query := r.q.Rebind(`INSERT INTO deleted_customers
		(id, original_customer_id, customer_data, deletion_reason, final_balance, total_interest_paid, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	res, err := r.q.ExecContext(ctx, query, archived.ID, archived.OriginalCustomerID, archived.CustomerData,
		archived.DeletionReason, archived.FinalBalance, archived.TotalInterestPaid, archived.DeletedAt)
	logger.DatabaseResult("INSERT", rowsAffected(res), err, "table", "deleted_customers")
	if err != nil {
		logger.ExitMethodWithError("customerRepository.Archive", err, "customerID", c.ID)
		return nil, persistence("archive customer", err)
	}

	logger.ExitMethod("customerRepository.Archive", "archiveID", archived.ID)
	return archived, nil
}

func (r *customerRepository) ListArchived(ctx context.Context, limit int) ([]domain.ArchivedCustomer, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.q.Rebind(`SELECT id, original_customer_id, customer_data, deletion_reason, final_balance,
		total_interest_paid, deleted_at FROM deleted_customers ORDER BY deleted_at DESC LIMIT ?`)
	var archived []domain.ArchivedCustomer
	if err := r.q.SelectContext(ctx, &archived, query, limit); err != nil {
		return nil, persistence("list archived customers", err)
	}
	return archived, nil
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
