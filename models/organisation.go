package models

import "time"

// Organisation represents a supporting organisation (e.g. an NHS body)
// whose units can be suggested on an assessment or engage with an innovation.
type Organisation struct {
	OrganisationID string     `gorm:"primaryKey;column:organisation_id;type:char(36)" json:"organisation_id"`
	Name           string     `gorm:"column:name" json:"name"`
	Acronym        *string    `gorm:"column:acronym" json:"acronym,omitempty"`
	IsShadow       bool       `gorm:"column:is_shadow" json:"is_shadow"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Units []OrganisationUnit `gorm:"foreignKey:OrganisationID" json:"units,omitempty"`
}

type OrganisationUnit struct {
	OrganisationUnitID string     `gorm:"primaryKey;column:organisation_unit_id;type:char(36)" json:"organisation_unit_id"`
	OrganisationID     string     `gorm:"column:organisation_id;type:char(36);index" json:"organisation_id"`
	Name               string     `gorm:"column:name" json:"name"`
	Acronym            *string    `gorm:"column:acronym" json:"acronym,omitempty"`
	IsShadow           bool       `gorm:"column:is_shadow" json:"is_shadow"`
	CreateAt           *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Organisation Organisation `gorm:"foreignKey:OrganisationID;references:OrganisationID" json:"organisation,omitempty"`
}

func (Organisation) TableName() string     { return "organisations" }
func (OrganisationUnit) TableName() string { return "organisation_units" }
