package back

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

func (b *Back) CreateUser(ctx context.Context, name, password string) (User, error) {
	user, err := NewUser(name, password)
	if err != nil {
		return User{}, err
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getUserByName(tx, name); err == nil {
			return util.ErrPublic("this user name is already taken")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return user.insert(tx)
	}); err != nil {
		return User{}, err
	}

	log.Printf("info: created user %s", user.Name)

	return user, nil
}

// Authenticate returns the user matching the given credentials or
// ErrInvalidCredential, unknown names and wrong passwords are not told apart.
func (b *Back) Authenticate(ctx context.Context, name, password string) (out User, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getUserByName(tx, name)
		return err
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredential
		}
		return User{}, err
	}

	if !out.checkPassword(password) {
		return User{}, ErrInvalidCredential
	}

	return out, nil
}

func (b *Back) GetUserByID(ctx context.Context, id util.UUIDAsBlob) (out User, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		out, err = getUserByID(tx, id)
		return err
	}); err != nil {
		return User{}, err
	}

	return out, nil
}
