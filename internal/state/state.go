package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.reloadly/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var tokensBucket = []byte("tokens")

// StoredToken is an access token persisted for one deployment and account.
type StoredToken struct {
	Target  string    `json:"target"`
	Account string    `json:"account"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// State wraps a bbolt database holding access tokens keyed by deployment
// and account.
// It implements core.TokenStore so tokens survive between CLI invocations.
type State struct {
	db  *bolt.DB
	now func() time.Time
}

var _ core.TokenStore = (*State)(nil)

// LoadAt opens a state database at the given path, creating it if it
// does not exist.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}

	return &State{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// Load returns the token stored under key, or "" when there is none.
func (s *State) Load(ctx context.Context, key core.StoreKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var stored StoredToken

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(tokensBucket).Get([]byte(key.String()))
		if v == nil {
			return nil
		}

		return json.Unmarshal(v, &stored)
	})
	if err != nil {
		return "", fmt.Errorf("reading token for %s: %w", key.Target, err)
	}

	return stored.Token, nil
}

// Save stores token under key, replacing any previous one. An empty token
// removes the entry.
func (s *State) Save(ctx context.Context, key core.StoreKey, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if token == "" {
		return s.Delete(key)
	}

	data, err := json.Marshal(StoredToken{
		Target:  key.Target.String(),
		Account: key.Account,
		Token:   token,
		SavedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).Put([]byte(key.String()), data)
	})
}

// Delete removes the token stored under key.
func (s *State) Delete(key core.StoreKey) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).Delete([]byte(key.String()))
	})
}

// Tokens returns every stored token, ordered by target name then account.
func (s *State) Tokens() ([]StoredToken, error) {
	var out []StoredToken

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).ForEach(func(_, v []byte) error {
			var st StoredToken
			if err := json.Unmarshal(v, &st); err != nil {
				return err
			}

			out = append(out, st)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}

	return out, nil
}
