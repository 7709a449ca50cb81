package across

// suggestedFeesResponse is the subset of the Across quote payload the
// adapter reads. Amounts are decimal strings in the token's smallest
// unit.
type suggestedFeesResponse struct {
	TotalRelayFee struct {
		Pct   string `json:"pct"`
		Total string `json:"total"`
	} `json:"totalRelayFee"`
	Timestamp           string `json:"timestamp"`
	IsAmountTooLow      bool   `json:"isAmountTooLow"`
	FillDeadline        string `json:"fillDeadline"`
	ExclusivityDeadline string `json:"exclusivityDeadline"`
	ExclusiveRelayer    string `json:"exclusiveRelayer"`
	SpokePoolAddress    string `json:"spokePoolAddress"`
}

type depositStatusResponse struct {
	Status      string `json:"status"` // "pending" | "filled" | "expired"
	FillTxHash  string `json:"fillTx"`
	DepositTxHash string `json:"depositTxHash"`
}
