package registration

import (
	"io"

	"franchisehub-api/internal/models"
)

// Document is an optional uploaded financial document accompanying a
// registration.
type Document struct {
	Filename string
	Content  io.Reader
}

type Input struct {
	CompanyName          string `json:"companyName"`
	Industry             string `json:"industry"`
	YearEstablished      string `json:"yearEstablished"`
	Headquarters         string `json:"headquarters"`
	Website              string `json:"website,omitempty"`
	FranchiseName        string `json:"franchiseName"`
	FranchiseDescription string `json:"franchiseDescription"`
	InvestmentRange      string `json:"investmentRange"`
	FranchiseFee         string `json:"franchiseFee"`
	RoyaltyFee           string `json:"royaltyFee"`
	Email                string `json:"email"`
	IsAgreed             bool   `json:"isAgreed"`

	Document *Document `json:"-"`
}

type Output struct {
	Business       models.Business `json:"business"`
	NotificationID string          `json:"notificationId"`
}
