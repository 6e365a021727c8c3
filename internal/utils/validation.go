package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxSearchRadius bounds stops-for-location searches.
const MaxSearchRadius = 10000.0

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// ValidateName validates a stop or bus name taken from a request.
// Names are free text (spaces and non-ASCII letters are common) so only
// length, control characters and markup are rejected.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name cannot be empty")
	}

	if len(name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.New("name contains invalid characters")
		}
	}

	if htmlTagPattern.MatchString(name) {
		return errors.New("name contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateRadius validates radius values for location searches
func ValidateRadius(radius float64) error {
	if radius < 0 {
		return errors.New("radius must be non-negative")
	}

	if radius > MaxSearchRadius {
		return fmt.Errorf("radius too large (max %.0f meters)", MaxSearchRadius)
	}

	return nil
}

// ValidateLocationParams validates a complete set of location parameters
func ValidateLocationParams(lat, lon, radius float64) map[string][]string {
	fieldErrors := make(map[string][]string)

	if err := ValidateLatitude(lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}

	if err := ValidateLongitude(lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}

	if err := ValidateRadius(radius); err != nil {
		fieldErrors["radius"] = append(fieldErrors["radius"], err.Error())
	}

	return fieldErrors
}

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// A missing key yields 0 with no error; an unparsable value is recorded in fieldErrors.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	raw := params.Get(key)
	if raw == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return f, fieldErrors
}

// TrimJSONSuffix strips a trailing ".json" from a path value, matching the
// OneBusAway convention of /api/where/stop/{id}.json.
func TrimJSONSuffix(value string) string {
	return strings.TrimSuffix(value, ".json")
}
