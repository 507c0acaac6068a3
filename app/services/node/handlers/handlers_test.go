package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerworks/blockchain/app/services/node/handlers"
	"github.com/ledgerworks/blockchain/business/web/errs"
	"github.com/ledgerworks/blockchain/business/web/mid"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	authmem "github.com/ledgerworks/blockchain/foundation/blockchain/auth/memory"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/memory"
	"github.com/ledgerworks/blockchain/foundation/blockchain/genesis"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/blockchain/signature"
	"github.com/ledgerworks/blockchain/foundation/blockchain/state"
	"github.com/ledgerworks/blockchain/foundation/events"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	keyA   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	addrB  = "0xf01813e4b85e178a83e29b8e7bf26bd830a25f32"
	miner1 = database.Address("0xbee6ace826ec3de1b6349888b9151b92522f7f76")
	secret = "operator-secret"
)

// lowRand never fires the probabilistic reward.
type lowRand struct{}

func (lowRand) Float64() float64 { return 0.99 }
func (lowRand) Intn(n int) int   { return 0 }

type testNode struct {
	public  http.Handler
	private http.Handler
	addrA   string
}

func newTestNode(t *testing.T) testNode {
	pk, err := crypto.HexToECDSA(keyA)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}
	addrA := string(database.Normalize(crypto.PubkeyToAddress(pk.PublicKey).Hex()))

	st, err := state.New(state.Config{
		Storage:       memory.New(),
		Genesis:       genesis.Genesis{Difficulty: 1, RewardFraction: 0.1, Address: addrA, Amount: 1000},
		Authenticator: auth.New(authmem.New(), 0),
		Sealer:        miner.New(miner.Config{Address: miner1, Rand: lowRand{}}),
		ProofChecker:  state.VerifyProof{},
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	cfg := handlers.MuxConfig{
		Log:    zap.NewNop().Sugar(),
		State:  st,
		NS:     ns,
		Evts:   events.New(),
		Secret: secret,
	}

	return testNode{
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		addrA:   addrA,
	}
}

func call(h http.Handler, method string, path string, body any, withSecret bool, resp any) int {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, path, &buf)
	if withSecret {
		r.Header.Set(mid.SecretHeader, secret)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if resp != nil {
		json.NewDecoder(w.Body).Decode(resp)
	}

	return w.Code
}

func challenge(t *testing.T, node testNode) string {
	var ch struct {
		Nonce string  `json:"nonce"`
		Fee   float64 `json:"mining_fee"`
	}
	if code := call(node.public, http.MethodPost, "/v1/tx/challenge", map[string]string{"sender": node.addrA}, false, &ch); code != http.StatusOK {
		t.Fatalf("Should be able to get a challenge: %d", code)
	}
	return ch.Nonce
}

func signed(t *testing.T, node testNode, value string, token string) auth.Request {
	pk, _ := crypto.HexToECDSA(keyA)
	sig, err := signature.SignText(auth.Message(node.addrA, addrB, value, token), pk)
	if err != nil {
		t.Fatalf("Should be able to sign: %s", err)
	}

	return auth.Request{
		Sender:    node.addrA,
		Receiver:  addrB,
		Value:     value,
		Token:     token,
		Signature: sig,
	}
}

func TestNodeAPI(t *testing.T) {
	t.Log("Given the need to move value through the node API.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen A sends 100 to B and the operator mines.", testID)
		{
			node := newTestNode(t)

			req := signed(t, node, "100", challenge(t, node))

			var sub struct {
				Status string `json:"status"`
			}
			if code := call(node.public, http.MethodPost, "/v1/tx/submit", req, false, &sub); code != http.StatusOK || sub.Status != "admitted" {
				t.Fatalf("\t%s\tTest %d:\tShould admit the transaction: %d %q", failed, testID, code, sub.Status)
			}
			t.Logf("\t%s\tTest %d:\tShould admit the transaction.", success, testID)

			var er errs.Response
			if code := call(node.public, http.MethodPost, "/v1/tx/submit", req, false, &er); code != http.StatusUnauthorized {
				t.Fatalf("\t%s\tTest %d:\tShould reject a replayed request: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a replayed request with %q.", success, testID, er.Error)

			if code := call(node.private, http.MethodPost, "/v1/node/mine", nil, false, nil); code != http.StatusForbidden {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine without the secret: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine without the secret.", success, testID)

			var blk struct {
				Index uint64 `json:"block_index"`
			}
			if code := call(node.private, http.MethodPost, "/v1/node/mine", nil, true, &blk); code != http.StatusCreated || blk.Index != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould mine block 1: %d %d", failed, testID, code, blk.Index)
			}
			t.Logf("\t%s\tTest %d:\tShould mine block 1.", success, testID)

			var bal struct {
				Exists  bool    `json:"exists"`
				Balance float64 `json:"balance"`
			}
			call(node.public, http.MethodGet, "/v1/balance/"+addrB, nil, false, &bal)
			if !bal.Exists || bal.Balance != 99 {
				t.Fatalf("\t%s\tTest %d:\tShould show 99 for B: %v", failed, testID, bal.Balance)
			}
			call(node.public, http.MethodGet, "/v1/balance/"+node.addrA, nil, false, &bal)
			if bal.Balance != 900 {
				t.Fatalf("\t%s\tTest %d:\tShould show 900 for A: %v", failed, testID, bal.Balance)
			}
			t.Logf("\t%s\tTest %d:\tShould show the moved balances.", success, testID)

			var ch struct {
				Length int `json:"length"`
			}
			if call(node.public, http.MethodGet, "/v1/chain", nil, false, &ch); ch.Length != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have 2 blocks: %d", failed, testID, ch.Length)
			}
			t.Logf("\t%s\tTest %d:\tShould have 2 blocks.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen requests are malformed.", testID)
		{
			node := newTestNode(t)

			if code := call(node.public, http.MethodGet, "/v1/balance/not-an-address", nil, false, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject a bad address: %d", failed, testID, code)
			}
			if code := call(node.public, http.MethodPost, "/v1/tx/challenge", map[string]string{"sender": "nope"}, false, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject a bad sender: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject bad addresses.", success, testID)

			req := signed(t, node, "0.5", challenge(t, node))
			if code := call(node.public, http.MethodPost, "/v1/tx/submit", req, false, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject a value below the fee: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a value below the fee.", success, testID)

			req = signed(t, node, "5000", challenge(t, node))
			if code := call(node.public, http.MethodPost, "/v1/tx/submit", req, false, nil); code != http.StatusUnprocessableEntity {
				t.Fatalf("\t%s\tTest %d:\tShould reject an unaffordable value: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an unaffordable value.", success, testID)

			if code := call(node.private, http.MethodPost, "/v1/node/mine", nil, true, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine an empty pool: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine an empty pool.", success, testID)

			body := map[string]any{"address": node.addrA, "amount": 10}
			if code := call(node.private, http.MethodPost, "/v1/node/genesis", body, true, nil); code != http.StatusConflict {
				t.Fatalf("\t%s\tTest %d:\tShould refuse a second genesis: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse a second genesis.", success, testID)
		}
	}
}
