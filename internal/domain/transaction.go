package domain

// Action enumerates the canonical lending-protocol event kinds.
type Action string

const (
	ActionDeposit     Action = "deposit"
	ActionBorrow      Action = "borrow"
	ActionRepay       Action = "repay"
	ActionRedeem      Action = "redeem"
	ActionLiquidation Action = "liquidation"
)

// Actions returns every canonical action in reporting order.
func Actions() []Action {
	return []Action{ActionDeposit, ActionBorrow, ActionRepay, ActionRedeem, ActionLiquidation}
}

// Transaction is one normalized lending-protocol event. AmountUSD is already
// decimal-adjusted and priced; it is never negative.
type Transaction struct {
	Wallet    string
	Action    Action
	AmountUSD float64
	Asset     string
	Timestamp int64
}
