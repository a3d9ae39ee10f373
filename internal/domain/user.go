package domain

import "time"

type User struct {
	ID             uint
	TelegramUserID int64
	Username       string
	FirstName      string
	LastName       string
	Services       []ServiceTag
	ExpiresAt      *time.Time
	Active         bool
	Permanent      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasService reports whether the user has enabled the given service tag.
func (u *User) HasService(tag ServiceTag) bool {
	for _, t := range u.Services {
		if t == tag {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the user's enabled services intersect tags.
func (u *User) MatchesAny(tags []ServiceTag) bool {
	for _, t := range tags {
		if u.HasService(t) {
			return true
		}
	}
	return false
}
