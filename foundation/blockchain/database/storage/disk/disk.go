// Package disk implements the ability to read and write blocks to disk
// with each block in its own file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified database block and stores it on disk in a
// file labeled with the block index.
func (d *Disk) Write(blockData database.BlockData) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this block and name it based on the block index.
	// A failed seal is retried, so an existing partial file is truncated.
	f, err := os.OpenFile(d.getPath(blockData.Index), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return err
	}

	// Write the new block to disk. The block only counts as stored once the
	// file closes cleanly.
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by index.
func (d *Disk) GetBlock(index uint64) (database.BlockData, error) {

	// Open the block file for the specified index.
	f, err := os.OpenFile(d.getPath(index), os.O_RDONLY, 0600)
	if err != nil {
		return database.BlockData{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var blockData database.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return database.BlockData{}, fmt.Errorf("block %d: %w", index, err)
	}

	// Return the block as a database block.
	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block index 0.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the blockchain on disk.
func (d *Disk) Reset() error {
	files, err := filepath.Glob(path.Join(d.dbPath, "*.json"))
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return err
		}
	}

	return nil
}

// lastIndex returns the highest block index with a file on disk.
func (d *Disk) lastIndex() (uint64, bool, error) {
	files, err := filepath.Glob(path.Join(d.dbPath, "*.json"))
	if err != nil {
		return 0, false, err
	}

	var last uint64
	var found bool
	for _, file := range files {
		index, err := strconv.ParseUint(strings.TrimSuffix(filepath.Base(file), ".json"), 10, 64)
		if err != nil {
			continue
		}
		if !found || index > last {
			last = index
			found = true
		}
	}

	return last, found, nil
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(index uint64) string {
	name := strconv.FormatUint(index, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the storage API.
	current uint64 // Current block index being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
	gap     error  // Set once a missing block is found below the last file.
}

// Next retrieves the next block from disk. A missing file only ends the
// chain when no block with a higher index is on disk.
func (di *diskIterator) Next() (database.BlockData, error) {
	if di.eoc {
		return database.BlockData{}, database.ErrEndOfChain
	}
	if di.gap != nil {
		return database.BlockData{}, di.gap
	}

	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, fs.ErrNotExist) {
		last, found, lerr := di.disk.lastIndex()
		switch {
		case lerr != nil:
			return database.BlockData{}, lerr
		case found && last > di.current:
			di.gap = fmt.Errorf("%w: block %d missing below block %d", database.ErrIntegrity, di.current, last)
			return database.BlockData{}, di.gap
		}
		di.eoc = true
	}
	di.current++

	return blockData, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
