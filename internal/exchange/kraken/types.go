package kraken

// apiResponse is the envelope every Kraken endpoint returns: a list of
// error strings (empty on success) plus the result payload.
type apiResponse[T any] struct {
	Error  []string `json:"error"`
	Result T        `json:"result"`
}

type balanceResult map[string]string

// ticker carries the subset of Kraken's ticker payload we read.
// a = ask array [price, whole lot volume, lot volume].
type ticker struct {
	Ask  [3]string `json:"a"`
	Bid  [3]string `json:"b"`
	Last [2]string `json:"c"`
}

type tickerResult map[string]ticker

type addOrderResult struct {
	TxID  []string `json:"txid"`
	Descr struct {
		Order string `json:"order"`
	} `json:"descr"`
}

type orderInfo struct {
	Status  string `json:"status"`
	Price   string `json:"price"`
	VolExec string `json:"vol_exec"`
	Cost    string `json:"cost"`
	Fee     string `json:"fee"`
}

type queryOrdersResult map[string]orderInfo

type withdrawResult struct {
	RefID string `json:"refid"`
}

type withdrawStatusEntry struct {
	RefID  string `json:"refid"`
	Method string `json:"method"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	Fee    string `json:"fee"`
	Status string `json:"status"`
}
