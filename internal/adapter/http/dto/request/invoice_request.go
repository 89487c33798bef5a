package request

// DepositCreateRequest records an up-front deposit against a job.
type DepositCreateRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// PartialCreateRequest issues a progress invoice. Basis is "percent"
// (Percent of the remaining balance) or "fixed_amount" (Amount, clamped
// to the remaining balance).
type PartialCreateRequest struct {
	Basis   string  `json:"basis" binding:"required"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}
