package domain

// User Model
// The primary key is the Clerk-issued identity string, supplied by the
// caller and never generated server-side.
type User struct {
	ClerkID  string `gorm:"column:id;primaryKey" json:"clerkId"` // External identity (primary key)
	Email    string `json:"email"`                               // User email
	Name     string `json:"name"`                                // Display name
	ImageURL string `json:"imageUrl"`                            // Avatar URL
}

// TableName overrides the table name to match the schema
func (User) TableName() string {
	return "users"
}
