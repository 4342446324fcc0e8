package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/richardliu001/payments-engine/internal/engine"
)

// Write renders the final account snapshot as CSV with the header
// client,available,held,total,locked. Amounts print in plain decimal
// form, at most four fractional digits by construction.
func Write(w io.Writer, accounts []*engine.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, a := range accounts {
		row := []string{
			strconv.FormatUint(uint64(a.ClientID), 10),
			a.Available.String(),
			a.Held.String(),
			a.Total().String(),
			strconv.FormatBool(a.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
