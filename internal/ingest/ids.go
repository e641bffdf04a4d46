package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// idNamespace scopes the synthesized transaction IDs. Fixed so the same row
// always maps to the same ID across runs.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // RFC 4122 DNS namespace

// EnsureIDs fills in a deterministic UUIDv5 for rows whose source format has
// no transaction ID (xlsx and simple-json exports). The ID is derived from
// the account, date, merchant, amount and the row's ordinal within the file,
// so re-ingesting the same file dedupes cleanly while two identical charges
// on the same day keep distinct IDs.
func EnsureIDs(rows []model.Transaction, accountID string) []model.Transaction {
	out := make([]model.Transaction, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			seed := fmt.Sprintf("%s|%s|%s|%.2f|%d",
				accountID, r.PostedDate.Format(model.DateFormat), r.Merchant, r.Amount, i)
			r.ID = uuid.NewSHA1(idNamespace, []byte(seed)).String()
		}
		out[i] = r
	}
	return out
}
