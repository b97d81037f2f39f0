package dto

type UpdateProfileRequest struct {
	SelectedTrade             *string  `json:"selectedTrade" validate:"omitempty"`
	Experience                *string  `json:"experience" validate:"omitempty,max=100"`
	Bio                       *string  `json:"bio" validate:"omitempty,max=3000"`
	CompanyName               *string  `json:"companyName" validate:"omitempty,max=200"`
	CompanyRegistrationNumber *string  `json:"companyRegistrationNumber" validate:"omitempty,max=50"`
	BusinessType              *string  `json:"businessType" validate:"omitempty,max=100"`
	EmployeeCount             *int     `json:"employeeCount" validate:"omitempty,min=0"`
	CompanyWebsiteURL         *string  `json:"companyWebsiteUrl" validate:"omitempty,url"`
	Skills                    []string `json:"skills" validate:"omitempty,max=30"`
	AddressLine1              *string  `json:"addressLine1" validate:"omitempty,max=200"`
	AddressLine2              *string  `json:"addressLine2" validate:"omitempty,max=200"`
	Town                      *string  `json:"town" validate:"omitempty,max=100"`
	Country                   *string  `json:"country" validate:"omitempty,max=100"`
	Postcode                  *string  `json:"postcode" validate:"omitempty,max=10"`
}

type ProfileResponse struct {
	ID                 string   `json:"id"`
	UserID             string   `json:"userId"`
	SelectedTrade      string   `json:"selectedTrade"`
	Experience         string   `json:"experience"`
	Bio                string   `json:"bio,omitempty"`
	CompanyName        string   `json:"companyName,omitempty"`
	BusinessType       string   `json:"businessType,omitempty"`
	EmployeeCount      int      `json:"employeeCount,omitempty"`
	CompanyWebsiteURL  string   `json:"companyWebsiteUrl,omitempty"`
	CertificationImage string   `json:"certificationImage,omitempty"`
	InsuranceImage     string   `json:"insuranceImage,omitempty"`
	GalleryImages      []string `json:"galleryImages,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	Town               string   `json:"town,omitempty"`
	Postcode           string   `json:"postcode,omitempty"`
	Credits            int      `json:"credits"`
	SubscriptionPlan   string   `json:"subscriptionPlan,omitempty"`
	SubscriptionStatus string   `json:"subscriptionStatus,omitempty"`
	RatingAverage      float64  `json:"ratingAverage"`
	RatingCount        int      `json:"ratingCount"`
}

type CreditsResponse struct {
	Credits int `json:"credits"`
}
