package models

import "time"

const TransactionSuccess = "success"

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutSettled PayoutStatus = "settled"
)

type Wallet struct {
	TutorID   string    `json:"tutor_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Transaction struct {
	ID        string    `json:"id"`
	TutorID   string    `json:"tutor_id"`
	SessionID string    `json:"session_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentLog struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	PaidAt        time.Time `json:"paid_at"`
}

// Payout is the pending settlement recorded alongside a qualifying session
// completion. SessionID is its key, so a session can owe at most one payout.
type Payout struct {
	SessionID string       `json:"session_id"`
	TutorID   string       `json:"tutor_id"`
	Amount    int64        `json:"amount"`
	Status    PayoutStatus `json:"status"`
	Attempts  int          `json:"attempts"`
	LastError *string      `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	SettledAt *time.Time   `json:"settled_at,omitempty"`
}

type WalletDetail struct {
	Wallet       Wallet        `json:"wallet"`
	Transactions []Transaction `json:"transactions"`
}
