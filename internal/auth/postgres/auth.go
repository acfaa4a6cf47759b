package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/worklog-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetIdentity(userID int64) (*auth.Identity, error) {
	var identity auth.Identity
	var role string

	query := `SELECT id, email, role, company_id, is_active FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&identity.UserID, &identity.Email, &role, &identity.CompanyID, &identity.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	identity.Role = auth.Role(role)

	return &identity, nil
}

// GetContactByCredentials resolves a client-portal contact. Access keys are
// stored hashed; comparison happens in the database with crypt().
func (r *Repository) GetContactByCredentials(email, accessKey string) (*auth.PortalSession, error) {
	var session auth.PortalSession

	query := `SELECT c.id, c.client_id, cl.company_id
	          FROM portal_contacts c
	          JOIN clients cl ON cl.id = c.client_id
	          WHERE c.email = ? AND c.access_key_hash = crypt(?, c.access_key_hash) AND c.is_active = true`

	row := r.db.Raw(query, email, accessKey).Row()
	if err := row.Scan(&session.ContactID, &session.ClientID, &session.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contact not found")
		}
		return nil, err
	}
	return &session, nil
}
