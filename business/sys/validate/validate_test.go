package validate_test

import (
	"testing"

	"github.com/ledgerworks/blockchain/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type request struct {
	Sender string  `json:"sender" validate:"required,address"`
	Value  float64 `json:"value" validate:"gt=0"`
}

func TestCheck(t *testing.T) {
	type table struct {
		name   string
		req    request
		fields []string
	}

	tt := []table{
		{
			name:   "valid",
			req:    request{Sender: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Value: 10},
			fields: nil,
		},
		{
			name:   "bad-address",
			req:    request{Sender: "dd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Value: 10},
			fields: []string{"sender"},
		},
		{
			name:   "missing-all",
			req:    request{},
			fields: []string{"sender", "value"},
		},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
				{
					err := validate.Check(tst.req)
					if len(tst.fields) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to validate the model: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to validate the model.", success, testID)
						return
					}

					if !validate.IsFieldErrors(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

					fields := validate.GetFieldErrors(err).Fields()
					for _, name := range tst.fields {
						if _, exists := fields[name]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould report field %q: %v", failed, testID, name, fields)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould report the failing fields.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
