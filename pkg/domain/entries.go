package domain

// Entry is a typed, fixed-arity record for one table. Every field is
// optional: a complete entry is appended, a sparse one patches a stored row.
type Entry interface {
	Table() Table
	// Fields returns one slot per column in header order; unset fields are nil.
	Fields() []Value
}

// EntryID returns the entry's id when set.
func EntryID(e Entry) (IntValue, bool) {
	f := e.Fields()
	if !e.Table().HasID() || len(f) == 0 || f[0] == nil {
		return IntValue{}, false
	}
	id, ok := f[0].(IntValue)
	return id, ok
}

// ToArray emits the canonical strings of the set fields, in declared order,
// skipping unset ones.
func ToArray(e Entry) []string {
	fields := e.Fields()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil {
			out = append(out, f.String())
		}
	}
	return out
}

// Len is the full arity of the entry's table, independent of which fields
// are set.
func Len(e Entry) int { return e.Table().Arity() }

func field[T Value](p *T) Value {
	if p == nil {
		return nil
	}
	return *p
}

// Member is a club member.
type Member struct {
	ID              *IntValue
	Name            *StringValue
	DateJoined      *DateValue
	AmountOwed      *IntValue
	Email           *StringValue
	Performing      *BoolValue
	Active          *BoolValue
	Officer         *BoolValue
	CurrentDuesPaid *BoolValue
	NotifyPoll      *BoolValue
	SendReceipt     *BoolValue
}

func (Member) Table() Table { return TableMember }

func (m Member) Fields() []Value {
	return []Value{
		field(m.ID), field(m.Name), field(m.DateJoined), field(m.AmountOwed),
		field(m.Email), field(m.Performing), field(m.Active), field(m.Officer),
		field(m.CurrentDuesPaid), field(m.NotifyPoll), field(m.SendReceipt),
	}
}

// Unreconciled is the statement id of money not yet on a statement.
const Unreconciled int64 = -1

// Income is money received. Amount is in cents; StatementID is -1 until the
// income is reconciled on a statement.
type Income struct {
	ID            *IntValue
	Date          *DateValue
	Amount        *IntValue
	Description   *StringValue
	PaymentTypeID *IntValue
	StatementID   *IntValue
}

func (Income) Table() Table { return TableIncome }

func (e Income) Fields() []Value {
	return []Value{
		field(e.ID), field(e.Date), field(e.Amount), field(e.Description),
		field(e.PaymentTypeID), field(e.StatementID),
	}
}

// Expense is money paid out to a recipient.
type Expense struct {
	ID            *IntValue
	Date          *DateValue
	Amount        *IntValue
	Description   *StringValue
	PaymentTypeID *IntValue
	RecipientID   *IntValue
	StatementID   *IntValue
}

func (Expense) Table() Table { return TableExpense }

func (e Expense) Fields() []Value {
	return []Value{
		field(e.ID), field(e.Date), field(e.Amount), field(e.Description),
		field(e.PaymentTypeID), field(e.RecipientID), field(e.StatementID),
	}
}

// Recipient is someone the club pays.
type Recipient struct {
	ID   *IntValue
	Name *StringValue
}

func (Recipient) Table() Table { return TableRecipient }

func (r Recipient) Fields() []Value { return []Value{field(r.ID), field(r.Name)} }

// PaymentType names a way money moves, such as cash or venmo.
type PaymentType struct {
	ID   *IntValue
	Name *StringValue
}

func (PaymentType) Table() Table { return TablePaymentType }

func (p PaymentType) Fields() []Value { return []Value{field(p.ID), field(p.Name)} }

// Statement groups incomes and expenses reconciled against one transfer.
type Statement struct {
	ID        *IntValue
	Date      *DateValue
	Confirmed *BoolValue
}

func (Statement) Table() Table { return TableStatement }

func (s Statement) Fields() []Value {
	return []Value{field(s.ID), field(s.Date), field(s.Confirmed)}
}

// Attendance records which members were present on a date.
type Attendance struct {
	ID        *IntValue
	Date      *DateValue
	MemberIDs *IntListValue
	QuarterID *QuarterValue
}

func (Attendance) Table() Table { return TableAttendance }

func (a Attendance) Fields() []Value {
	return []Value{field(a.ID), field(a.Date), field(a.MemberIDs), field(a.QuarterID)}
}

// DecodeMember decodes a full stored Member row.
func DecodeMember(row []string) (Member, error) {
	v, err := ParseRow(TableMember, row)
	if err != nil {
		return Member{}, err
	}
	return Member{
		ID:              Ptr(v[0].(IntValue)),
		Name:            Ptr(v[1].(StringValue)),
		DateJoined:      Ptr(v[2].(DateValue)),
		AmountOwed:      Ptr(v[3].(IntValue)),
		Email:           Ptr(v[4].(StringValue)),
		Performing:      Ptr(v[5].(BoolValue)),
		Active:          Ptr(v[6].(BoolValue)),
		Officer:         Ptr(v[7].(BoolValue)),
		CurrentDuesPaid: Ptr(v[8].(BoolValue)),
		NotifyPoll:      Ptr(v[9].(BoolValue)),
		SendReceipt:     Ptr(v[10].(BoolValue)),
	}, nil
}

// DecodeIncome decodes a full stored Income row.
func DecodeIncome(row []string) (Income, error) {
	v, err := ParseRow(TableIncome, row)
	if err != nil {
		return Income{}, err
	}
	return Income{
		ID:            Ptr(v[0].(IntValue)),
		Date:          Ptr(v[1].(DateValue)),
		Amount:        Ptr(v[2].(IntValue)),
		Description:   Ptr(v[3].(StringValue)),
		PaymentTypeID: Ptr(v[4].(IntValue)),
		StatementID:   Ptr(v[5].(IntValue)),
	}, nil
}

// DecodeExpense decodes a full stored Expense row.
func DecodeExpense(row []string) (Expense, error) {
	v, err := ParseRow(TableExpense, row)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		ID:            Ptr(v[0].(IntValue)),
		Date:          Ptr(v[1].(DateValue)),
		Amount:        Ptr(v[2].(IntValue)),
		Description:   Ptr(v[3].(StringValue)),
		PaymentTypeID: Ptr(v[4].(IntValue)),
		RecipientID:   Ptr(v[5].(IntValue)),
		StatementID:   Ptr(v[6].(IntValue)),
	}, nil
}

// DecodeRecipient decodes a full stored Recipient row.
func DecodeRecipient(row []string) (Recipient, error) {
	v, err := ParseRow(TableRecipient, row)
	if err != nil {
		return Recipient{}, err
	}
	return Recipient{ID: Ptr(v[0].(IntValue)), Name: Ptr(v[1].(StringValue))}, nil
}

// DecodePaymentType decodes a full stored PaymentType row.
func DecodePaymentType(row []string) (PaymentType, error) {
	v, err := ParseRow(TablePaymentType, row)
	if err != nil {
		return PaymentType{}, err
	}
	return PaymentType{ID: Ptr(v[0].(IntValue)), Name: Ptr(v[1].(StringValue))}, nil
}

// DecodeStatement decodes a full stored Statement row.
func DecodeStatement(row []string) (Statement, error) {
	v, err := ParseRow(TableStatement, row)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		ID:        Ptr(v[0].(IntValue)),
		Date:      Ptr(v[1].(DateValue)),
		Confirmed: Ptr(v[2].(BoolValue)),
	}, nil
}

// DecodeAttendance decodes a full stored Attendance row.
func DecodeAttendance(row []string) (Attendance, error) {
	v, err := ParseRow(TableAttendance, row)
	if err != nil {
		return Attendance{}, err
	}
	return Attendance{
		ID:        Ptr(v[0].(IntValue)),
		Date:      Ptr(v[1].(DateValue)),
		MemberIDs: Ptr(v[2].(IntListValue)),
		QuarterID: Ptr(v[3].(QuarterValue)),
	}, nil
}
