package back

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/yjkogan/stuff-tracker/internal/glicko"
	"github.com/yjkogan/stuff-tracker/internal/selection"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

type Back struct {
	db      *sqlx.DB
	updater *glicko.Updater

	pairStrategy selection.Strategy[Item]

	// voteMu makes this Back the single writer of ratings, reading two
	// ratings and writing them back must never interleave with another vote.
	voteMu sync.Mutex
}

var (
	ErrSameItem          = util.ErrPublic("an item cannot be compared with itself")
	ErrCategoryMismatch  = util.ErrPublic("only items of the same category can be compared")
	ErrEmptyName         = util.ErrPublic("name cannot be empty")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// New opens the sqlite database at path. The schema is expected to be
// migrated already.
func New(path string, params glicko.Params) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	updater, err := glicko.NewUpdater(params)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, err
	}

	return &Back{
		db:           db,
		updater:      updater,
		pairStrategy: selection.NewUniformRandom[Item](nil),
	}, nil
}

// sqliteDSN enables foreign keys (for cascading deletes) and makes every
// transaction take the write lock upfront so concurrent writers wait on
// busy_timeout instead of failing mid-transaction.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}

	return "file:" + path + "?_foreign_keys=1&_txlock=immediate&_busy_timeout=5000"
}

func (b *Back) Close() error {
	return b.db.Close()
}

// Params returns the rating system parameters this Back was created with.
func (b *Back) Params() glicko.Params {
	return b.updater.Params()
}

// SetPairStrategy replaces the strategy used by NextPair.
func (b *Back) SetPairStrategy(s selection.Strategy[Item]) {
	b.pairStrategy = s
}

func (b *Back) transaction(ctx context.Context, cb util.TransactionCallback) error {
	return util.Transaction(ctx, b.db, cb)
}
