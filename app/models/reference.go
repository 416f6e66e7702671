package models

// CityRecord is one (postal code, city) pair of the reference data.
type CityRecord struct {
	Name           string `json:"name" yaml:"name" bson:"name"`
	PostalCode     string `json:"postal_code" yaml:"postal_code" bson:"postal_code"`
	NormalizedName string `json:"normalized_name,omitempty" yaml:"normalized_name" bson:"normalized_name"`
	Region         string `json:"region,omitempty" yaml:"region" bson:"region"`
}

// StreetRecord is a street of a postal code, optionally with the name it had before a rename.
type StreetRecord struct {
	CurrentName string  `json:"current_name" yaml:"current_name" bson:"current_name"`
	OldName     *string `json:"old_name,omitempty" yaml:"old_name" bson:"old_name,omitempty"`
	PostalCode  string  `json:"postal_code" yaml:"postal_code" bson:"postal_code"`
	Version     int     `json:"version" yaml:"version" bson:"version"`
	Status      string  `json:"status,omitempty" yaml:"status" bson:"status"`
	NameKey     string  `json:"name_key,omitempty" yaml:"name_key" bson:"name_key"`
	OldNameKey  string  `json:"old_name_key,omitempty" yaml:"old_name_key" bson:"old_name_key,omitempty"`
}

// DistrictRecord assigns a district to a postal code, optionally narrowed to one street.
type DistrictRecord struct {
	Name       string `json:"name" yaml:"name" bson:"name"`
	City       string `json:"city,omitempty" yaml:"city" bson:"city"`
	PostalCode string `json:"postal_code" yaml:"postal_code" bson:"postal_code"`
	Street     string `json:"street,omitempty" yaml:"street" bson:"street,omitempty"`
	StreetKey  string `json:"street_key,omitempty" yaml:"street_key" bson:"street_key"`
	Version    int    `json:"version" yaml:"version" bson:"version"`
	Status     string `json:"status,omitempty" yaml:"status" bson:"status"`
}

// IsActive reports whether the record is usable. An empty status counts as active.
func (d DistrictRecord) IsActive() bool {
	return d.Status == "" || d.Status == "active"
}

// Dataset is a complete set of reference data as loaded from a file or seeded into a store.
type Dataset struct {
	Cities    []CityRecord     `json:"cities" yaml:"cities"`
	Streets   []StreetRecord   `json:"streets" yaml:"streets"`
	Districts []DistrictRecord `json:"districts" yaml:"districts"`
}
