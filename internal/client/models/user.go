// Package models contains the client-side domain records exchanged with the
// bulletin-board backend and persisted in the local credential store.
package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// User is the identity record returned by the auth endpoints.
//
// The backend reports admin rights either through Role or through the
// legacy IsAdmin flag; IsAdministrator accepts both.
type User struct {
	ID                 int64              `json:"id"`
	Email              string             `json:"email"`
	DisplayName        string             `json:"display_name"`
	Role               Role               `json:"role,omitempty"`
	IsAdmin            bool               `json:"is_admin,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	IsActive           bool               `json:"is_active"`
	Bio                string             `json:"bio,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (u *User) IsAdministrator() bool {
	return u != nil && (u.Role == RoleAdmin || u.IsAdmin)
}

func (u *User) HasActiveSubscription() bool {
	return u != nil && u.SubscriptionStatus == SubscriptionActive
}

// Clone returns an independent copy so callers cannot mutate session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
