package dto

// ConversionRequest carries one conversion to perform. ExpenseID is optional;
// when set, the frozen historical rate for that expense takes priority over
// any live or cached rate. Strict makes a missing rate an error instead of
// falling back to the unconverted amount; the dashboard read path never sets it.
type ConversionRequest struct {
	Amount    float64 `form:"amount" json:"amount" binding:"required"`
	From      string  `form:"from" json:"from" binding:"required,len=3"`
	To        string  `form:"to" json:"to" binding:"required,len=3"`
	ExpenseID string  `form:"expenseID" json:"expenseID,omitempty"`
	Strict    bool    `form:"strict" json:"strict,omitempty"`
}

// ConversionResponse is the API shape for a completed conversion.
type ConversionResponse struct {
	Amount          float64 `json:"amount"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	ConvertedAmount float64 `json:"convertedAmount"`
}

// SaveRatesRequest triggers the historical-rate snapshot for an expense.
// Date defaults to now when omitted.
type SaveRatesRequest struct {
	Date string `json:"date,omitempty"` // RFC 3339; zero value means "now"
}
