package models

// Registration review statuses shared by Business and Notification.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsTerminalStatus reports whether a status can no longer transition.
func IsTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

type Business struct {
	ID                   string `json:"id"`
	CompanyName          string `json:"companyName"`
	Industry             string `json:"industry"`
	YearEstablished      string `json:"yearEstablished"`
	Headquarters         string `json:"headquarters"`
	Website              string `json:"website"`
	FranchiseName        string `json:"franchiseName"`
	FranchiseDescription string `json:"franchiseDescription"`
	InvestmentRange      string `json:"investmentRange"`
	FranchiseFee         string `json:"franchiseFee"`
	RoyaltyFee           string `json:"royaltyFee"`
	Email                string `json:"email"`
	FinancialDocuments   string `json:"financialDocuments,omitempty"`
	IsAgreed             bool   `json:"isAgreed"`
	Status               string `json:"status"`
	CreatedAt            string `json:"createdAt"`
	UpdatedAt            string `json:"updatedAt"`
}
