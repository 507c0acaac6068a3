package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerworks/blockchain/business/web/errs"
)

var client = http.Client{Timeout: 10 * time.Second}

func get(url string, resp any) error {
	r, err := client.Get(url)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decode(r, resp)
}

func post(url string, body any, resp any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	r, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return decode(r, resp)
}

// decode reads the response into resp, or the node's error message when
// the call failed.
func decode(r *http.Response, resp any) error {
	if r.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			return fmt.Errorf("%s", r.Status)
		}
		return fmt.Errorf("%s: %s", r.Status, er.Error)
	}

	return json.NewDecoder(r.Body).Decode(resp)
}
