package alerting

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/gestiongastos/backend/internal/domain"
)

// Regions whose calendars start the week on Sunday
var sundayFirstRegions = map[string]bool{
	"AG": true, "AS": true, "BD": true, "BR": true, "BS": true, "BT": true, "BW": true,
	"BZ": true, "CA": true, "CN": true, "CO": true, "DM": true, "DO": true, "ET": true,
	"GT": true, "GU": true, "HK": true, "HN": true, "ID": true, "IL": true, "IN": true,
	"JM": true, "JP": true, "KE": true, "KH": true, "KR": true, "LA": true, "MH": true,
	"MM": true, "MO": true, "MT": true, "MX": true, "MZ": true, "NI": true, "NP": true,
	"PA": true, "PE": true, "PH": true, "PK": true, "PR": true, "PT": true, "PY": true,
	"SA": true, "SG": true, "SV": true, "TH": true, "TT": true, "TW": true, "UM": true,
	"US": true, "VE": true, "VI": true, "WS": true, "YE": true, "ZA": true, "ZW": true,
}

// Regions where week 1 needs at least four days of the new year (ISO-8601 style)
var fourDayRegions = map[string]bool{
	"AD": true, "AT": true, "AX": true, "BE": true, "BG": true, "CH": true, "CZ": true,
	"DE": true, "DK": true, "EE": true, "ES": true, "FI": true, "FJ": true, "FO": true,
	"FR": true, "GB": true, "GF": true, "GG": true, "GI": true, "GP": true, "GR": true,
	"HU": true, "IE": true, "IM": true, "IS": true, "IT": true, "JE": true, "LI": true,
	"LT": true, "LU": true, "MC": true, "MQ": true, "NL": true, "NO": true, "PL": true,
	"RE": true, "RU": true, "SE": true, "SJ": true, "SK": true, "SM": true, "VA": true,
}

// WeekNumberingForLocale derives the week numbering of a BCP-47 locale.
// A tag without a region uses its most likely region ("es" -> ES).
func WeekNumberingForLocale(tag string) (domain.WeekNumbering, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return domain.WeekNumbering{}, fmt.Errorf("parsing locale %q: %w", tag, err)
	}

	region, _ := t.Region()
	code := region.String()

	w := domain.WeekNumbering{FirstDay: time.Monday, MinimalDays: 1}
	if sundayFirstRegions[code] {
		w.FirstDay = time.Sunday
	}
	if fourDayRegions[code] {
		w.MinimalDays = 4
	}
	return w, nil
}
