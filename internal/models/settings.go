package models

// DefaultRatePerMinute is the billing rate applied when the tenant has not
// configured one.
const DefaultRatePerMinute = 16.666

// Settings is the per-tenant configuration singleton. The JSON tags define
// the import/export file format; unknown keys in an imported file are
// ignored.
type Settings struct {
	RatePerMinute   float64 `bson:"rate_per_minute" json:"ratePerMinute"`
	BusinessName    string  `bson:"business_name" json:"businessName"`
	BusinessContact string  `bson:"business_contact" json:"businessContact"`
	BusinessAddress string  `bson:"business_address" json:"businessAddress"`
}

// DefaultSettings returns the documented defaults applied when no settings
// document exists yet.
func DefaultSettings() Settings {
	return Settings{RatePerMinute: DefaultRatePerMinute}
}

// SettingsPatch is a partial settings update, as produced by the JSON import
// file. Nil fields are left untouched by Merge.
type SettingsPatch struct {
	RatePerMinute   *float64 `json:"ratePerMinute"`
	BusinessName    *string  `json:"businessName"`
	BusinessContact *string  `json:"businessContact"`
	BusinessAddress *string  `json:"businessAddress"`
}

// Merge applies the patch as a shallow merge and returns the result. Fields
// absent from the patch retain their current values.
func (s Settings) Merge(p SettingsPatch) Settings {
	if p.RatePerMinute != nil {
		s.RatePerMinute = *p.RatePerMinute
	}
	if p.BusinessName != nil {
		s.BusinessName = *p.BusinessName
	}
	if p.BusinessContact != nil {
		s.BusinessContact = *p.BusinessContact
	}
	if p.BusinessAddress != nil {
		s.BusinessAddress = *p.BusinessAddress
	}
	return s
}
