package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table          string
	ID             string
	Username       string
	DisplayName    string
	CredentialHash string
	Role           string
	IsActive       string
	LastSeenAt     string
	CreatedAt      string
	UpdatedAt      string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:          "users.account",
	ID:             "id",
	Username:       "username",
	DisplayName:    "displayname",
	CredentialHash: "credentialhash",
	Role:           "role",
	IsActive:       "isactive",
	LastSeenAt:     "lastseenat",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.DisplayName, t.CredentialHash, t.Role,
		t.IsActive, t.LastSeenAt, t.CreatedAt, t.UpdatedAt,
	}
}
