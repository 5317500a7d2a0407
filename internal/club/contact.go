package club

import (
	"maps"
	"slices"
	"strings"

	"clubsheet/pkg/domain"
)

// carrierGateways maps a mobile carrier to its email-to-text domain.
var carrierGateways = map[string]string{
	"AT&T":              "txt.att.net",
	"T-Mobile":          "tmomail.net",
	"Verizon":           "vtext.com",
	"Sprint":            "messaging.sprintpcs.com",
	"XFinity Mobile":    "vtext.com",
	"Virgin Mobile":     "vmobl.com",
	"Metro PCS":         "mymetropcs.com",
	"Boost Mobile":      "sms.myboostmobile.com",
	"Cricket":           "sms.cricketwireless.net",
	"Republic Wireless": "text.republicwireless.com",
	"Google Fi":         "msg.fi.google.com",
	"U.S. Cellular":     "email.uscc.net",
	"Ting":              "message.ting.com",
	"Consumer Cellular": "mailmymobile.net",
	"C-Spire":           "cspire1.com",
	"Page Plus":         "vtext.com",
}

// Carriers lists the carriers a phone number may be given with.
func Carriers() []string {
	return slices.Sorted(maps.Keys(carrierGateways))
}

// ContactSettings describes how a member is reached. Email wins over
// Phone and Carrier, which are combined into a text gateway address.
// Nil flags are left unchanged.
type ContactSettings struct {
	Email       string
	Phone       string
	Carrier     string
	NotifyPoll  *bool
	SendReceipt *bool
}

// address returns the email to store, or nil when none was given.
func (c ContactSettings) address() (*domain.StringValue, error) {
	if email := strings.TrimSpace(c.Email); email != "" {
		if !strings.Contains(email, "@") {
			return nil, domain.IllegalArgumentf("%q is not an email address", email)
		}
		return domain.Ptr(domain.NewString(email)), nil
	}
	if c.Phone == "" && c.Carrier == "" {
		return nil, nil
	}
	var digits strings.Builder
	for _, r := range c.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil, domain.IllegalArgumentf("phone %q has no digits", c.Phone)
	}
	for name, gateway := range carrierGateways {
		if strings.EqualFold(name, strings.TrimSpace(c.Carrier)) {
			return domain.Ptr(domain.NewString(digits.String() + "@" + gateway)), nil
		}
	}
	return nil, domain.IllegalArgumentf("unknown carrier %q", c.Carrier)
}
