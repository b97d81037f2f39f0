package models

import "time"

type User struct {
	BaseModel
	FirstName      string     `gorm:"not null" json:"firstName"`
	LastName       string     `gorm:"not null" json:"lastName"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string     `json:"phone"`
	Postcode       string     `json:"postcode"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	Role           UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status         UserStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ProfilePicture string     `json:"profilePicture"`

	// Email verification
	EmailVerified       bool       `gorm:"default:false" json:"emailVerified"`
	VerificationToken   string     `gorm:"index" json:"-"`
	VerificationExpires *time.Time `json:"-"`

	// Password reset
	ResetToken   string     `gorm:"index" json:"-"`
	ResetExpires *time.Time `json:"-"`

	// Account security
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	LoginAttempts int        `gorm:"default:0" json:"-"`
	LockUntil     *time.Time `json:"-"`

	// Relations
	Profile       *TradespersonProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	RefreshTokens []RefreshToken       `gorm:"foreignKey:UserID" json:"-"`
}

// IsLocked проверяет активную блокировку после неудачных логинов
func (u *User) IsLocked() bool {
	return u.LockUntil != nil && u.LockUntil.After(time.Now())
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index" json:"-"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
}
