package models

// AssetView is an Asset normalised for display.
type AssetView struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	FileName     string `json:"filename"`
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	CreatedAt    string `json:"created_at"`
}

// UserView is a User without its password credential.
type UserView struct {
	ID              string `json:"_id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"is_email_verified"`
	CreatedAt       string `json:"created_at"`
}

// AssetPage is one page of an owner's assets plus the owner's profile.
type AssetPage struct {
	Assets         []AssetView `json:"assets"`
	User           *UserView   `json:"user"`
	Page           int64       `json:"page"`
	PageSize       int64       `json:"page_size"`
	SelectionLimit int         `json:"selection_limit"`
}
