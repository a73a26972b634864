package models

import "time"

// Role distinguishes parents from children within a family
type Role string

const (
	RoleParent Role = "PARENT"
	RoleChild  Role = "CHILD"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// AllowanceFrequency is how often an allowance is paid
type AllowanceFrequency string

const (
	AllowanceWeekly  AllowanceFrequency = "WEEKLY"
	AllowanceMonthly AllowanceFrequency = "MONTHLY"
)

// AllowanceSettings configures a child's periodic allowance.
// Day is 1-7 (Monday..Sunday) for weekly payments and 1-31 for monthly ones.
type AllowanceSettings struct {
	Amount         int64              `json:"amount"`
	Frequency      AllowanceFrequency `json:"frequency"`
	Day            int                `json:"day"`
	PointThreshold int64              `json:"pointThreshold"`
}

// User is a profile inside a family, either a parent or a child
type User struct {
	ID                   int64              `json:"id"`
	FamilyID             int64              `json:"familyId"`
	Name                 string             `json:"name"`
	Role                 Role               `json:"role"`
	Points               int64              `json:"points"`
	Balance              int64              `json:"balance"`
	PetPoints            int64              `json:"petPoints"`
	Allowance            *AllowanceSettings `json:"allowanceSettings,omitempty"`
	AllowancePaidThrough *time.Time         `json:"-"`
	PinHash              string             `json:"-"`
	HighScoreMath        int                `json:"highScoreMath"`
	HighScoreEnglish     int                `json:"highScoreEnglish"`
	AvatarColor          string             `json:"avatarColor,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// IsParent reports whether the profile belongs to a parent
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// IsChild reports whether the profile belongs to a child
func (u *User) IsChild() bool {
	return u.Role == RoleChild
}

// HasPIN reports whether selecting this profile requires a PIN
func (u *User) HasPIN() bool {
	return u.PinHash != ""
}

// HighScore returns the stored quiz record for a category
func (u *User) HighScore(category QuizCategory) int {
	if category == QuizEnglish {
		return u.HighScoreEnglish
	}
	return u.HighScoreMath
}

// Actor is the explicit session context for a request: which family is logged in
// and which profile inside it is acting.
type Actor struct {
	FamilyID int64 `json:"familyId"`
	UserID   int64 `json:"userId"`
	Role     Role  `json:"role"`
}

// IsParent reports whether the acting profile is a parent
func (a Actor) IsParent() bool {
	return a.Role == RoleParent
}
