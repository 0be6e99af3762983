package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusCompleted AccountStatus = "completed"
	AccountStatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusCompleted, AccountStatusSuspended:
		return true
	}
	return false
}

// Customer is the loan aggregate. LentAmount is fixed at creation; the balance
// only moves through ledger transactions.
type Customer struct {
	ID                  string        `json:"id" db:"id"`
	Name                string        `json:"name" db:"name"`
	Email               string        `json:"email" db:"email"`
	Phone               string        `json:"phone" db:"phone"`
	Address             string        `json:"address" db:"address"`
	IDType              string        `json:"id_type" db:"id_type"`
	IDNumber            string        `json:"id_number" db:"id_number"`
	GoldWeight          float64       `json:"gold_weight" db:"gold_weight"` // grams
	GoldRate            float64       `json:"gold_rate" db:"gold_rate"`     // per gram
	LentAmount          float64       `json:"lent_amount" db:"lent_amount"`
	CurrentBalance      float64       `json:"current_balance" db:"current_balance"`
	TargetAmount        float64       `json:"target_amount" db:"target_amount"`
	LentDate            time.Time     `json:"lent_date" db:"lent_date"`
	LastInterestDate    *time.Time    `json:"last_interest_date,omitempty" db:"last_interest_date"`
	AccountStatus       AccountStatus `json:"account_status" db:"account_status"`
	AutoInterestEnabled bool          `json:"auto_interest_enabled" db:"auto_interest_enabled"`
	Version             int           `json:"version" db:"version"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`

	Transactions []Transaction `json:"transactions,omitempty" db:"-"`
	GoldImages   []GoldImage   `json:"gold_images,omitempty" db:"-"`
}

// TargetReached reports whether the balance has hit the optional closing cap.
func (c *Customer) TargetReached() bool {
	return c.TargetAmount > 0 && c.CurrentBalance >= c.TargetAmount
}

// CanDelete is false while any balance above BalanceEpsilon is outstanding.
func (c *Customer) CanDelete() bool {
	return NormalizeBalance(c.CurrentBalance) == 0
}

// SetBalance stores v after normalization.
func (c *Customer) SetBalance(v float64) {
	c.CurrentBalance = NormalizeBalance(v)
}

// AdvanceInterestDate moves LastInterestDate forward to d; earlier dates are ignored.
func (c *Customer) AdvanceInterestDate(d time.Time) {
	if c.LastInterestDate != nil && !d.After(*c.LastInterestDate) {
		return
	}
	c.LastInterestDate = &d
}

// GoldImage is an opaque attachment. The ledger never reads or changes it.
type GoldImage struct {
	ID          string    `json:"id" db:"id"`
	CustomerID  string    `json:"customer_id" db:"customer_id"`
	Name        string    `json:"name" db:"image_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"image_size"`
	Data        []byte    `json:"data,omitempty" db:"image_data"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// ArchivedCustomer is a row of the deletion/backup log.
type ArchivedCustomer struct {
	ID                 string    `json:"id" db:"id"`
	OriginalCustomerID string    `json:"original_customer_id" db:"original_customer_id"`
	CustomerData       string    `json:"customer_data" db:"customer_data"` // JSON snapshot
	DeletionReason     string    `json:"deletion_reason" db:"deletion_reason"`
	FinalBalance       float64   `json:"final_balance" db:"final_balance"`
	TotalInterestPaid  float64   `json:"total_interest_paid" db:"total_interest_paid"`
	DeletedAt          time.Time `json:"deleted_at" db:"deleted_at"`
}

const (
	ArchiveReasonTargetReached = "Target amount reached"
	ArchiveReasonClosed        = "Account closed"
)

// CustomerSummary is the derived view shown next to a customer's ledger.
type CustomerSummary struct {
	InterestEarned    float64    `json:"interest_earned"`
	TotalPayments     float64    `json:"total_payments"`
	MonthlyProjection float64    `json:"monthly_projection"`
	NextInterestDue   time.Time  `json:"next_interest_due"`
	LastInterestDate  *time.Time `json:"last_interest_date,omitempty"`
}
