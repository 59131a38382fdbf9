package models

// Country is a playable country from the game catalog
type Country struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	ImageURL    string `gorm:"size:500" json:"image_url"`
	TotalGdp    int64  `gorm:"default:0" json:"total_gdp"`
}

func (Country) TableName() string {
	return "countries"
}

// Region belongs to a country
type Region struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"size:100;not null" json:"name"`
	CountryID uint     `gorm:"not null;index" json:"country_id"`
	Country   *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}

func (Region) TableName() string {
	return "regions"
}
