package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ticket-validator/internal/record"
)

// Field names read by the rules.
const (
	FieldTicketType = "ticketType"
	FieldStartDate  = "startDate"
	FieldPrice      = "price"
)

// DateLayout is the ISO calendar date format accepted for startDate.
const DateLayout = "2006-01-02"

// TicketTypes are the accepted values of ticketType. Matching is exact.
var TicketTypes = []string{"DAY", "WEEK", "MONTH", "YEAR"}

// Rule checks one field of a record. Check returns nil when the field passes
// and an error describing the failure otherwise.
type Rule struct {
	Kind  ViolationKind
	Field string
	Check func(v record.Value, present bool, today time.Time) error
}

// Rules are evaluated in this order for every record.
var Rules = []Rule{
	{Kind: KindTicketType, Field: FieldTicketType, Check: checkTicketType},
	{Kind: KindStartDate, Field: FieldStartDate, Check: checkStartDate},
	{Kind: KindPrice, Field: FieldPrice, Check: checkPrice},
}

var errMissing = errors.New("field is missing")

func checkTicketType(v record.Value, present bool, _ time.Time) error {
	if !present {
		return errMissing
	}
	s, ok := v.AsString()
	if !ok {
		return fmt.Errorf("ticket type is %s, want string", v.Kind())
	}
	for _, allowed := range TicketTypes {
		if s == allowed {
			return nil
		}
	}
	return fmt.Errorf("ticket type %q must be one of: %s", s, strings.Join(TicketTypes, ", "))
}

// checkStartDate skips absent, null and empty values.
func checkStartDate(v record.Value, present bool, today time.Time) error {
	if !present || v.IsNull() {
		return nil
	}
	s, ok := v.AsString()
	if !ok {
		return fmt.Errorf("start date is %s, want string", v.Kind())
	}
	if s == "" {
		return nil
	}
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("error parsing start date: %w", err)
	}
	if date.After(today) {
		return fmt.Errorf("start date %s is in the future", s)
	}
	return nil
}

func checkPrice(v record.Value, present bool, _ time.Time) error {
	if !present {
		return errMissing
	}
	var text string
	switch v.Kind() {
	case record.KindNumber:
		text, _ = v.AsNumber()
	case record.KindString:
		text, _ = v.AsString()
	default:
		return fmt.Errorf("price is %s, want number", v.Kind())
	}
	price, err := ParsePrice(text)
	if err != nil {
		return fmt.Errorf("error parsing price: %w", err)
	}
	if price == 0 {
		return errors.New("price must not be zero")
	}
	if price%2 != 0 {
		return fmt.Errorf("price %d must be even", price)
	}
	return nil
}

// ParsePrice converts a decimal integer literal with an optional sign into a
// 32-bit price.
func ParsePrice(text string) (int32, error) {
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// dateOnly truncates t to midnight UTC of its calendar date in t's location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
