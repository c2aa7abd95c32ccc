package model

// Side is the direction of a balance change.
type Side string

const (
	Credit Side = "credit"
	Debit  Side = "debit"
)

// Delta is a token balance change the caller must apply to the ledger.
type Delta struct {
	Owner  Address `json:"owner"`
	Mint   Address `json:"mint"`
	Amount uint64  `json:"amount"`
	Side   Side    `json:"side"`
}

func CreditOf(owner, mint Address, amount uint64) Delta {
	return Delta{Owner: owner, Mint: mint, Amount: amount, Side: Credit}
}

func DebitOf(owner, mint Address, amount uint64) Delta {
	return Delta{Owner: owner, Mint: mint, Amount: amount, Side: Debit}
}
