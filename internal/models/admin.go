package models

// Admin represents a back-office operator stored in the admins table.
// Admin credentials are provisioned out of band; the API only verifies
// admin-scoped tokens and resolves the identity behind them.
type Admin struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
