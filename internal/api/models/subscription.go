package models

// SubscriptionStatus represents the status of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
)

// Subscription represents a person's subscription to a project.
type Subscription struct {
	ID               string             `json:"id"`
	PersonID         string             `json:"personId"`
	ProjectID        string             `json:"projectId"`
	Status           SubscriptionStatus `json:"status"`
	SubscriptionDate string             `json:"subscriptionDate"`
	IsActive         bool               `json:"isActive"`
	CreatedAt        Timestamp          `json:"createdAt"`
	UpdatedAt        Timestamp          `json:"updatedAt"`
}

// SubscriptionCreateRequest is the request body for creating a subscription.
type SubscriptionCreateRequest struct {
	PersonID  string              `json:"personId" validate:"required"`
	ProjectID string              `json:"projectId" validate:"required"`
	Status    *SubscriptionStatus `json:"status,omitempty"`
}

// SubscriptionUpdateRequest is the request body for updating a subscription.
type SubscriptionUpdateRequest struct {
	Status   *SubscriptionStatus `json:"status,omitempty"`
	IsActive *bool               `json:"isActive,omitempty"`
}

// PagedSubscriptions represents a paginated list of subscriptions.
type PagedSubscriptions struct {
	Items []Subscription    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
