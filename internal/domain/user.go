package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountBanned AccountStatus = "banned"
)

// PermanentBanExpiry marks a ban without end.
var PermanentBanExpiry = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type BanDetails struct {
	Reason    string    `json:"reason"`
	BannedAt  time.Time `json:"bannedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User is a registered account.
type User struct {
	ID              string        `json:"id"`
	Email           string        `json:"email"`
	PasswordHash    string        `json:"-"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName,omitempty"`
	Role            Role          `json:"role"`
	AccountStatus   AccountStatus `json:"accountStatus"`
	IsEmailVerified bool          `json:"isEmailVerified"`
	Ban             *BanDetails   `json:"banDetails,omitempty"`
	Address         string        `json:"address,omitempty"`
	ContactNumber   string        `json:"contactNumber,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BanLapsed reports whether a ban exists and its expiry is before now.
func (u User) BanLapsed(now time.Time) bool {
	return u.AccountStatus == AccountBanned && u.Ban != nil && now.After(u.Ban.ExpiresAt)
}

// UserStats is a user with lifetime order aggregates.
type UserStats struct {
	User
	TotalOrders int   `json:"totalOrders"`
	TotalSpent  int64 `json:"totalSpentCents"`
}

// Session is the server-side state behind a session cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Idle reports whether the session saw no activity for longer than timeout.
func (s Session) Idle(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}
