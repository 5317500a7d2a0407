package domain

import "fmt"

// Table identifies one logical table of the club dataset.
type Table int

const (
	TableMember Table = iota
	TableIncome
	TableExpense
	TableRecipient
	TablePaymentType
	TableStatement
	TableAttendance
	TableClubInfo
)

// Column is one header cell and the variant stored beneath it.
type Column struct {
	Name string
	Type ValueType
}

type schema struct {
	name    string
	columns []Column
}

// Column name constants shared by the engine and its callers.
const (
	ColID                   = "id"
	ColName                 = "name"
	ColDate                 = "date"
	ColDateJoined           = "dateJoined"
	ColAmountOwed           = "amountOwed"
	ColEmail                = "email"
	ColPerforming           = "performing"
	ColActive               = "active"
	ColOfficer              = "officer"
	ColCurrentDuesPaid      = "currentDuesPaid"
	ColNotifyPoll           = "notifyPoll"
	ColSendReceipt          = "sendReceipt"
	ColAmount               = "amount"
	ColDescription          = "description"
	ColPaymentTypeID        = "paymentTypeId"
	ColRecipientID          = "recipientId"
	ColStatementID          = "statementId"
	ColConfirmed            = "confirmed"
	ColMemberIDs            = "memberIds"
	ColQuarterID            = "quarterId"
	ColMemberFee            = "memberFee"
	ColOfficerFee           = "officerFee"
	ColDaysUntilFeeRequired = "daysUntilFeeRequired"
	ColCurrentQuarterID     = "currentQuarterId"
)

var schemas = [...]schema{
	TableMember: {name: "Member", columns: []Column{
		{ColID, TypeInt},
		{ColName, TypeString},
		{ColDateJoined, TypeDate},
		{ColAmountOwed, TypeInt},
		{ColEmail, TypeString},
		{ColPerforming, TypeBool},
		{ColActive, TypeBool},
		{ColOfficer, TypeBool},
		{ColCurrentDuesPaid, TypeBool},
		{ColNotifyPoll, TypeBool},
		{ColSendReceipt, TypeBool},
	}},
	TableIncome: {name: "Income", columns: []Column{
		{ColID, TypeInt},
		{ColDate, TypeDate},
		{ColAmount, TypeInt},
		{ColDescription, TypeString},
		{ColPaymentTypeID, TypeInt},
		{ColStatementID, TypeInt},
	}},
	TableExpense: {name: "Expense", columns: []Column{
		{ColID, TypeInt},
		{ColDate, TypeDate},
		{ColAmount, TypeInt},
		{ColDescription, TypeString},
		{ColPaymentTypeID, TypeInt},
		{ColRecipientID, TypeInt},
		{ColStatementID, TypeInt},
	}},
	TableRecipient: {name: "Recipient", columns: []Column{
		{ColID, TypeInt},
		{ColName, TypeString},
	}},
	TablePaymentType: {name: "PaymentType", columns: []Column{
		{ColID, TypeInt},
		{ColName, TypeString},
	}},
	TableStatement: {name: "Statement", columns: []Column{
		{ColID, TypeInt},
		{ColDate, TypeDate},
		{ColConfirmed, TypeBool},
	}},
	TableAttendance: {name: "Attendance", columns: []Column{
		{ColID, TypeInt},
		{ColDate, TypeDate},
		{ColMemberIDs, TypeIntList},
		{ColQuarterID, TypeQuarter},
	}},
	TableClubInfo: {name: "ClubInfo", columns: []Column{
		{ColMemberFee, TypeInt},
		{ColOfficerFee, TypeInt},
		{ColDaysUntilFeeRequired, TypeInt},
		{ColCurrentQuarterID, TypeQuarter},
	}},
}

// Tables lists every table in declaration order.
func Tables() []Table {
	out := make([]Table, len(schemas))
	for i := range schemas {
		out[i] = Table(i)
	}
	return out
}

func (t Table) Valid() bool { return t >= 0 && int(t) < len(schemas) }

// String returns the grid name backing the table.
func (t Table) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Table(%d)", int(t))
	}
	return schemas[t].name
}

// Columns returns the table's schema in header order.
func (t Table) Columns() []Column {
	if !t.Valid() {
		return nil
	}
	return append([]Column(nil), schemas[t].columns...)
}

// Header returns the column names in header order.
func (t Table) Header() []string {
	cols := t.Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// Arity is the full number of columns.
func (t Table) Arity() int {
	if !t.Valid() {
		return 0
	}
	return len(schemas[t].columns)
}

// HasID reports whether the first column is an engine-assigned id.
func (t Table) HasID() bool { return t.Valid() && t != TableClubInfo }

// ColumnIndex returns the position of name in the header.
func (t Table) ColumnIndex(name string) (int, error) {
	if t.Valid() {
		for i, c := range schemas[t].columns {
			if c.Name == name {
				return i, nil
			}
		}
	}
	return -1, FieldNotFoundf("%s has no column %q", t, name)
}

// ParseTable resolves a grid name such as "PaymentType" to its Table.
func ParseTable(name string) (Table, error) {
	for i, s := range schemas {
		if s.name == name {
			return Table(i), nil
		}
	}
	return 0, IllegalArgumentf("unknown table %q", name)
}

// ParseRow decodes a full stored row using the table's column types.
func ParseRow(t Table, row []string) ([]Value, error) {
	cols := t.Columns()
	if len(row) != len(cols) {
		return nil, IllegalArgumentf("%s row has %d cells, want %d", t, len(row), len(cols))
	}
	out := make([]Value, len(cols))
	for i, c := range cols {
		v, err := ParseValue(c.Type, row[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, c.Name, err)
		}
		out[i] = v
	}
	return out, nil
}
