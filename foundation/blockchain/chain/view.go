package chain

import (
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/storage"
)

// StateView provides read access to the accounts at a fixed state root.
type StateView struct {
	store *storage.Store
	root  string
}

// NewStateView constructs a view of the state persisted under the root.
func NewStateView(store *storage.Store, root string) StateView {
	return StateView{
		store: store,
		root:  root,
	}
}

// Root returns the state root the view is bound to.
func (sv StateView) Root() string {
	return sv.root
}

// Account returns the account for the specified id.
func (sv StateView) Account(accountID database.AccountID) (database.Account, bool, error) {
	act, err := sv.load()
	if err != nil {
		return database.Account{}, false, err
	}

	account, exists := act.Get(accountID)
	return account, exists, nil
}

// Balance returns the balance for the specified account.
func (sv StateView) Balance(accountID database.AccountID) (uint64, bool, error) {
	account, exists, err := sv.Account(accountID)
	return account.Balance, exists, err
}

// Accounts returns a copy of every account at the state root.
func (sv StateView) Accounts() (map[database.AccountID]database.Account, error) {
	act, err := sv.load()
	if err != nil {
		return nil, err
	}

	return act.Copy(), nil
}

func (sv StateView) load() (*accounts.Accounts, error) {
	act, found, err := sv.store.GetState(sv.root)
	if err != nil {
		return nil, &StorageError{Op: "load state", Err: err}
	}
	if !found {
		return nil, &StorageError{Op: "load state", Err: errNotPersisted(sv.root)}
	}

	return act, nil
}

func errNotPersisted(hash string) error {
	return fmt.Errorf("%s not persisted", hash)
}
