package postgres

import "fmt"

// TableNames holds dynamically prefixed table names. Each environment
// (dev_, test_, prod_) gets its own set of tables; the SQL is interpolated
// before it reaches the database, so prepared statements stay distinct
// per environment.
type TableNames struct {
	Projects      string
	Documents     string
	Sessions      string
	Conversations string
	Uploads       string
	Invitations   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Projects:      fmt.Sprintf("%sprojects", prefix),
		Documents:     fmt.Sprintf("%sdocuments", prefix),
		Sessions:      fmt.Sprintf("%ssessions", prefix),
		Conversations: fmt.Sprintf("%sconversations", prefix),
		Uploads:       fmt.Sprintf("%suploaded_documents", prefix),
		Invitations:   fmt.Sprintf("%sinvitations", prefix),
	}
}
