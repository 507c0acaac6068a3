// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the local accounts and the system accounts.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[database.Address]string
	names    map[string]database.Address
}

// New constructs a name service with accounts from the specified folder.
// A missing folder results in a name service knowing only the system
// accounts.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.Address]string),
		names:    make(map[string]database.Address),
	}

	for _, addr := range []database.Address{database.GenesisAccount, database.RewardAccount, database.MiningPaymentAccount} {
		ns.add(addr, string(addr))
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		account := database.Normalize(crypto.PubkeyToAddress(privateKey.PublicKey).Hex())
		ns.add(account, strings.TrimSuffix(path.Base(fileName), ".ecdsa"))

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

func (ns *NameService) add(account database.Address, name string) {
	ns.accounts[account] = name
	ns.names[name] = account
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(account database.Address) string {
	name, exists := ns.accounts[database.Normalize(string(account))]
	if !exists {
		return string(account)
	}
	return name
}

// Resolve returns the account for the specified name or hex address.
func (ns *NameService) Resolve(nameOrAddress string) (database.Address, error) {
	if account, exists := ns.names[nameOrAddress]; exists {
		return account, nil
	}

	return database.ToAddress(nameOrAddress)
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.Address]string {
	cpy := make(map[database.Address]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
