package models

type Notification struct {
	ID         string `json:"id"`
	BusinessID string `json:"businessId"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// PendingNotification is a notification expanded with its business record, as
// served to the admin review dashboard.
type PendingNotification struct {
	Notification
	Business Business `json:"business"`
}
