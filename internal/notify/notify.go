// Package notify sends payment receipts to members.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.alis.build/alog"
)

// Receipt is one payment confirmation for one member.
type Receipt struct {
	Name        string
	Email       string
	AmountCents int64
	Description string
	Date        time.Time
}

// Amount renders the receipt amount as dollars.
func (r Receipt) Amount() string {
	return "$" + strconv.FormatFloat(float64(r.AmountCents)/100, 'f', 2, 64)
}

func (r Receipt) subject() string {
	return fmt.Sprintf("Receipt: %s", r.Description)
}

func (r Receipt) body() string {
	return fmt.Sprintf("Hi %s,\n\nWe received %s for %s on %s.\n\nThanks!\n",
		r.Name, r.Amount(), r.Description, r.Date.UTC().Format("01/02/2006"))
}

// Notifier delivers receipts.
type Notifier interface {
	SendReceipt(ctx context.Context, r Receipt) error
}

// Log writes receipts to the log instead of sending them.
type Log struct{}

func (Log) SendReceipt(ctx context.Context, r Receipt) error {
	alog.Infof(ctx, "receipt for %s <%s>: %s %s", r.Name, r.Email, r.Amount(), r.Description)
	return nil
}
