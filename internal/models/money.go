package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LenientAmount is a monetary amount that tolerates sloppy client input.
// Numbers parse normally; numeric strings are parsed; anything else
// (missing, null, text, booleans) decodes to 0 rather than failing the
// request. Invoice amount-received fields use this type.
type LenientAmount float64

func (a *LenientAmount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = LenientAmount(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = LenientAmount(f)
			return nil
		}
	}

	*a = 0
	return nil
}

// Float64 returns the amount as a plain float64.
func (a LenientAmount) Float64() float64 {
	return float64(a)
}
