package review

type DecisionOutput struct {
	NotificationID string `json:"notificationId"`
	BusinessID     string `json:"businessId"`
	Status         string `json:"status"`
	DecidedAt      string `json:"decidedAt"`
}
