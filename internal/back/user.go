package back

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
	"golang.org/x/crypto/bcrypt"
)

// A User can log in to the API and vote.
type User struct {
	ID           util.UUIDAsBlob
	CreatedAt    util.TimeAsTimestamp
	Name         string
	PasswordHash string
}

func NewUser(name, password string) (User, error) {
	if name == "" {
		return User{}, ErrEmptyName
	}
	if len(password) < 8 {
		return User{}, util.ErrPublic("password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           util.NewUUIDAsBlob(),
		CreatedAt:    util.NewTimeAsTimestamp(time.Now()),
		Name:         name,
		PasswordHash: string(hash),
	}, nil
}

func (u *User) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert(`"User"`).SetMap(squirrel.Eq{
		"ID":           u.ID,
		"CreatedAt":    u.CreatedAt,
		"Name":         u.Name,
		"PasswordHash": u.PasswordHash,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getUserByName(tx *sqlx.Tx, name string) (User, error) {
	var ret User
	query := `SELECT * FROM "User" WHERE "User".Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		return User{}, err
	}

	return ret, nil
}

func getUserByID(tx *sqlx.Tx, id util.UUIDAsBlob) (User, error) {
	var ret User
	query := `SELECT * FROM "User" WHERE "User".ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return User{}, err
	}

	return ret, nil
}
