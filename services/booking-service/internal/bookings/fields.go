package bookings

// Fields carries the caller-supplied booking fields. A nil pointer or nil slice
// means the field was absent from the request and must be left untouched.
type Fields struct {
	CustomerName *string
	MobileNumber *string
	Items        []string
	Date         *string
	DateRange    []string
	Time         *TimeInput
	Session      *string
	TotalHours   *string
	PaymentType  *string
	Amount       *float64
	Advance      *float64
	Pending      *float64
	Installments *[]InstallmentInput
	Description  *string
	Note         *string
}

// TimeInput is a wall-clock window as typed by the user, e.g. "10:00 AM".
type TimeInput struct {
	Start string
	End   string
}

type InstallmentInput struct {
	Amount float64
	Date   string
	Status string
}

func (f Fields) touchesSchedule() bool {
	return f.Items != nil || f.Date != nil || f.DateRange != nil || f.Time != nil || f.Session != nil
}
