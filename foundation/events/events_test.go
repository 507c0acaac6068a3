package events_test

import (
	"fmt"
	"testing"

	"github.com/ledgerworks/blockchain/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out messages to subscribers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two subscribers are registered.", testID)
		{
			evts := events.New()
			a := evts.Subscribe("a")
			b := evts.Subscribe("b")

			if evts.Subscribe("a") != a {
				t.Fatalf("\t%s\tTest %d:\tShould get the same channel for the same id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same channel for the same id.", success, testID)

			evts.Publish("block 1 sealed")
			if msg := <-a; msg != "block 1 sealed" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver to a: got %q", failed, testID, msg)
			}
			if msg := <-b; msg != "block 1 sealed" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver to b: got %q", failed, testID, msg)
			}
			t.Logf("\t%s\tTest %d:\tShould deliver the message to every subscriber.", success, testID)

			if err := evts.Unsubscribe("a"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unsubscribe: %v", failed, testID, err)
			}
			if _, open := <-a; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", failed, testID)
			}
			if err := evts.Unsubscribe("a"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to unsubscribe twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a subscriber falls behind.", testID)
		{
			evts := events.New()
			ch := evts.Subscribe("slow")

			for i := 0; i < 150; i++ {
				evts.Publish(fmt.Sprintf("msg %d", i))
			}

			if got := len(ch); got != 100 {
				t.Fatalf("\t%s\tTest %d:\tShould buffer 100 messages: got %d", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould drop messages past the buffer without blocking.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen shutting down.", testID)
		{
			evts := events.New()
			ch := evts.Subscribe("a")
			evts.Shutdown()

			if _, open := <-ch; open {
				t.Fatalf("\t%s\tTest %d:\tShould close existing channels.", failed, testID)
			}
			if evts.Subscribers() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have no subscribers left.", failed, testID)
			}

			late := evts.Subscribe("late")
			if _, open := <-late; open {
				t.Fatalf("\t%s\tTest %d:\tShould hand late subscribers a closed channel.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel and refuse new subscribers.", success, testID)
		}
	}
}
