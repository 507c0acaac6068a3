// Package database handles the data model of the blockchain: transactions,
// blocks, metaparameters and the interface for storing blocks.
package database

import "errors"

// ErrEndOfChain is returned by an iterator once there are no more blocks.
var ErrEndOfChain = errors.New("end of chain")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(index uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// ReadAll walks the storage and returns every block in index order.
func ReadAll(storage Storage) ([]Block, error) {
	var blocks []Block

	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, ToBlock(blockData))
	}

	return blocks, nil
}
