package models

import (
	"time"

	"gorm.io/datatypes"
)

type TradespersonProfile struct {
	BaseModel
	UserID string `gorm:"uniqueIndex;not null" json:"userId"` // ровно один профиль на мастера

	SelectedTrade             string `json:"selectedTrade"`
	Experience                string `json:"experience"`
	CertificationImage        string `json:"certificationImage"`
	InsuranceImage            string `json:"insuranceImage"`
	CompanyName               string `json:"companyName"`
	CompanyRegistrationNumber string `json:"companyRegistrationNumber"`
	Bio                       string `json:"bio"`
	BusinessType              string `json:"businessType"`
	EmployeeCount             int    `json:"employeeCount"`
	CompanyWebsiteURL         string `json:"companyWebsiteURL"`

	GalleryImages datatypes.JSON `gorm:"type:jsonb" json:"galleryImages"`
	Skills        datatypes.JSON `gorm:"type:jsonb" json:"skills"`

	// Business address
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Town         string `json:"town"`
	Country      string `json:"country"`
	Postcode     string `json:"postcode"`

	// Кредиты списываются атомарно в транзакции отклика,
	// баланс не может уйти в минус
	Credits int `gorm:"not null;default:0;check:credits >= 0" json:"credits"`

	// Subscription descriptor
	SubscriptionPlan     string             `json:"subscriptionPlan"`
	SubscriptionStatus   SubscriptionStatus `gorm:"type:varchar(20)" json:"subscriptionStatus"`
	SubscriptionExpiry   *time.Time         `json:"subscriptionExpiry,omitempty"`
	StripeCustomerID     string             `json:"-"`
	StripeSubscriptionID string             `json:"-"`

	RatingAverage float64 `gorm:"default:0" json:"ratingAverage"`
	RatingCount   int     `gorm:"default:0" json:"ratingCount"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
