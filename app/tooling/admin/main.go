// This program performs administrative tasks for the ledger.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledgerworks/blockchain/app/tooling/admin/commands"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/disk"
	"github.com/ledgerworks/blockchain/foundation/logger"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

const (
	dbPath   = "zblock/blocks/"
	nsFolder = "zblock/accounts/"
)

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin verify | bals [account]")
	}

	log.Infow("admin", "version", build, "command", os.Args[1], "dbpath", dbPath)

	strg, err := disk.New(dbPath)
	if err != nil {
		return err
	}
	defer strg.Close()

	ns, err := nameservice.New(nsFolder)
	if err != nil {
		return err
	}

	return processCommands(os.Args, strg, ns)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, strg *disk.Disk, ns *nameservice.NameService) error {
	switch args[1] {
	case "verify":
		if err := commands.Verify(strg); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
	case "bals":
		if err := commands.Balances(args, strg, ns); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
