package redisstore_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth/redisstore"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestStore(t *testing.T) {
	addr := os.Getenv("LEDGER_TEST_REDIS")
	if addr == "" {
		t.Skip("LEDGER_TEST_REDIS is not set")
	}

	ctx := context.Background()
	store := redisstore.New(addr, "", 0)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Skipf("redis is not reachable: %s", err)
	}

	t.Log("Given the need to hold challenges in redis.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a challenge is taken twice.", testID)
		{
			sender := database.Address("0xredisstoretest")
			if err := store.Put(ctx, sender, "token", time.Minute); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to store the challenge: %s", failed, testID, err)
			}

			token, err := store.Take(ctx, sender)
			if err != nil || token != "token" {
				t.Fatalf("\t%s\tTest %d:\tShould get the token back, got %q: %v", failed, testID, token, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the token back.", success, testID)

			if _, err := store.Take(ctx, sender); !errors.Is(err, auth.ErrMissingChallenge) {
				t.Fatalf("\t%s\tTest %d:\tShould not get the token a second time: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not get the token a second time.", success, testID)
		}
	}
}
