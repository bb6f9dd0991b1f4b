package domain

import (
	"strings"
	"unicode"
)

// Measurement field names as they appear in station exports.
const (
	FieldTimestamp = "Timestamp"
	FieldGHI       = "GHI"
	FieldDNI       = "DNI"
	FieldDHI       = "DHI"
	FieldModA      = "ModA"
	FieldModB      = "ModB"
	FieldWS        = "WS"
	FieldWSgust    = "WSgust"
	FieldWSstdev   = "WSstdev"
	FieldWD        = "WD"
	FieldWDstdev   = "WDstdev"
	FieldTamb      = "Tamb"
	FieldRH        = "RH"
	FieldBP        = "BP"
	FieldCleaning  = "Cleaning"
	FieldPrecip    = "Precipitation"
	FieldTModA     = "TModA"
	FieldTModB     = "TModB"
	FieldComments  = "Comments"

	// FieldOutliers is the boolean column added by the cleaner.
	FieldOutliers = "Outliers"
)

// IrradianceFields are the radiation components profiled by hour of day.
var IrradianceFields = []string{FieldGHI, FieldDNI, FieldDHI}

// ModuleFields are the module sensor readings compared before and after cleaning events.
var ModuleFields = []string{FieldModA, FieldModB}

// CountrySlug derives the file-name stem for a country: lowercase letters and digits only.
// "Sierra Leone" becomes "sierraleone".
func CountrySlug(country string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(country)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
