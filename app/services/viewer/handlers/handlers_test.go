package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ledgerworks/blockchain/app/services/viewer/handlers"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestIndex(t *testing.T) {
	t.Log("Given the need to serve the viewer page.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen requesting the index.", testID)
		{
			app, err := handlers.UIMux("node.example:8080", nil, zap.NewNop().Sugar())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the mux: %v", failed, testID, err)
			}

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould get a 200: %d", failed, testID, w.Code)
			}
			if !strings.Contains(w.Body.String(), `"node.example:8080"`) {
				t.Fatalf("\t%s\tTest %d:\tShould point the page at the node.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould serve the page pointed at the node.", success, testID)
		}
	}
}
