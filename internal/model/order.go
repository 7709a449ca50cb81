package model

// Order is the ephemeral record of one exchange swap attempt.
type Order struct {
	TxID          string
	Pair          string
	Volume        string
	Status        OrderStatus
	ExecutedPrice float64
}

type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Withdrawal is the ephemeral record of one exchange withdrawal attempt.
type Withdrawal struct {
	RefID  string
	Asset  string
	Amount float64
	Status string
}
