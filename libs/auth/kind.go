package auth

import "strings"

const (
	KindHourly = "hourly"
	KindDaily  = "daily"
)

// KindForBusinessType maps an owner's business type to the booking kind carried in
// their token. Box-cricket turfs rent by the hour; every other venue rents by the day.
func KindForBusinessType(businessType string) string {
	if strings.EqualFold(strings.TrimSpace(businessType), "Box Cricket") {
		return KindHourly
	}
	return KindDaily
}
