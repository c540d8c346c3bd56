package request

// SubscriptionRequest is the form body of POST /subscriptions.
type SubscriptionRequest struct {
	Name  string `form:"name" validate:"required"`
	Email string `form:"email" validate:"required"`
}
