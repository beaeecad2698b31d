package types

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	"github.com/lib/pq"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is someone who can sign in to manage recharges
type User struct {
	ID               string
	Email            string
	FullName         string
	PasswordHash     string
	Role             Role
	AssignedZones    []string
	AssignedAgencies []string
	AssignedGares    []string
	CreatedAt        time.Time
}

// NewUser creates a user with a hashed password. The user is not stored.
func NewUser(email, fullName, password string, role Role, createdAt time.Time) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("NewUser: unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("NewUser: %s", err)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &User{
		ID:               id.String(),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		FullName:         fullName,
		PasswordHash:     string(hash),
		Role:             role,
		AssignedZones:    []string{},
		AssignedAgencies: []string{},
		AssignedGares:    []string{},
		CreatedAt:        createdAt,
	}, nil
}

// CheckPassword returns whether password matches the user's password
func (user *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CountUsers returns the number of registered users
func CountUsers(node sqalx.Node) (int, error) {
	tx, err := node.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sdb.Select("COUNT(*)").From("app_user").RunWith(tx).Query()
	if err != nil {
		return 0, fmt.Errorf("CountUsers: %s", err)
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("CountUsers: %s", err)
		}
	}
	return count, rows.Err()
}

func getUsersWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*User, error) {
	users := []*User{}

	tx, err := node.Beginx()
	if err != nil {
		return users, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "email", "full_name", "password_hash", "role",
		"assigned_zones", "assigned_agencies", "assigned_gares", "created_at").
		From("app_user").
		RunWith(tx).Query()
	if err != nil {
		return users, fmt.Errorf("getUsersWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.PasswordHash,
			&user.Role,
			(*pq.StringArray)(&user.AssignedZones),
			(*pq.StringArray)(&user.AssignedAgencies),
			(*pq.StringArray)(&user.AssignedGares),
			&user.CreatedAt)
		if err != nil {
			return users, fmt.Errorf("getUsersWithSelect: %s", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return users, fmt.Errorf("getUsersWithSelect: %s", err)
	}
	return users, nil
}

// GetUser returns the User with the given ID
func GetUser(node sqalx.Node, id string) (*User, error) {
	s := sdb.Select().
		Where(sq.Eq{"id": id})
	users, err := getUsersWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFound("User")
	}
	return users[0], nil
}

// GetUserByEmail returns the User with the given email address
func GetUserByEmail(node sqalx.Node, email string) (*User, error) {
	s := sdb.Select().
		Where(sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
	users, err := getUsersWithSelect(node, s)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFound("User")
	}
	return users[0], nil
}

// Update adds or updates the user
func (user *User) Update(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("app_user").
		Columns("id", "email", "full_name", "password_hash", "role",
			"assigned_zones", "assigned_agencies", "assigned_gares", "created_at").
		Values(user.ID, user.Email, user.FullName, user.PasswordHash, user.Role,
			pq.StringArray(user.AssignedZones), pq.StringArray(user.AssignedAgencies),
			pq.StringArray(user.AssignedGares), user.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET email = ?, full_name = ?, password_hash = ?,
			role = ?, assigned_zones = ?, assigned_agencies = ?, assigned_gares = ?`,
			user.Email, user.FullName, user.PasswordHash, user.Role,
			pq.StringArray(user.AssignedZones), pq.StringArray(user.AssignedAgencies),
			pq.StringArray(user.AssignedGares)).
		RunWith(tx).Exec()
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("AddUser: email %s already registered", user.Email)
		}
		return fmt.Errorf("AddUser: %s", err)
	}
	return tx.Commit()
}
