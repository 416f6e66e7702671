package models

import "strings"

// AddressFields holds one postal address record. Empty string means the field is unset.
type AddressFields struct {
	Company         string `json:"company,omitempty" yaml:"company" bson:"company,omitempty"`
	Street          string `json:"street,omitempty" yaml:"street" bson:"street,omitempty"`
	StreetNumber    string `json:"street_number,omitempty" yaml:"street_number" bson:"street_number,omitempty"`
	AddressAddition string `json:"address_addition,omitempty" yaml:"address_addition" bson:"address_addition,omitempty"`
	PostalCode      string `json:"postal_code,omitempty" yaml:"postal_code" bson:"postal_code,omitempty"`
	City            string `json:"city,omitempty" yaml:"city" bson:"city,omitempty"`
	District        string `json:"district,omitempty" yaml:"district" bson:"district,omitempty"`
	OriginalStreet  string `json:"original_street,omitempty" yaml:"original_street" bson:"original_street,omitempty"`
}

// IsSet reports whether v carries a value. "0" counts as set.
func IsSet(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f AddressFields) Trimmed() AddressFields {
	return AddressFields{
		Company:         strings.TrimSpace(f.Company),
		Street:          strings.TrimSpace(f.Street),
		StreetNumber:    strings.TrimSpace(f.StreetNumber),
		AddressAddition: strings.TrimSpace(f.AddressAddition),
		PostalCode:      strings.TrimSpace(f.PostalCode),
		City:            strings.TrimSpace(f.City),
		District:        strings.TrimSpace(f.District),
		OriginalStreet:  strings.TrimSpace(f.OriginalStreet),
	}
}

// AppendAddition adds fragment to AddressAddition, comma separated.
// Blank fragments and fragments already present are ignored.
func (f *AddressFields) AppendAddition(fragment string) {
	f.AddressAddition = JoinFragment(f.AddressAddition, fragment)
}

// AppendCompany adds fragment to Company with the same rules as AppendAddition.
func (f *AddressFields) AppendCompany(fragment string) {
	f.Company = JoinFragment(f.Company, fragment)
}

// RemoveAddition drops fragment from AddressAddition and tidies the separators left behind.
func (f *AddressFields) RemoveAddition(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || f.AddressAddition == "" {
		return
	}
	parts := strings.Split(f.AddressAddition, ",")
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, fragment) {
			continue
		}
		kept = append(kept, p)
	}
	f.AddressAddition = strings.Join(kept, ", ")
}

// JoinFragment comma-joins fragment onto existing unless it is blank or equal
// to one of existing's comma-separated parts.
func JoinFragment(existing, fragment string) string {
	existing = strings.TrimSpace(existing)
	fragment = strings.Trim(strings.TrimSpace(fragment), ",")
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return existing
	}
	if existing == "" {
		return fragment
	}
	for _, part := range strings.Split(existing, ",") {
		if strings.EqualFold(strings.TrimSpace(part), fragment) {
			return existing
		}
	}
	return existing + ", " + fragment
}
