package services

import "innovation-tracking-api/models"

// OrganisationUnitInfo is the unit shape returned inside grouped responses.
type OrganisationUnitInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Acronym  *string `json:"acronym,omitempty"`
	IsShadow bool    `json:"is_shadow"`
}

// OrganisationWithUnits groups units under their owning organisation.
type OrganisationWithUnits struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Acronym  *string                `json:"acronym,omitempty"`
	IsShadow bool                   `json:"is_shadow"`
	Units    []OrganisationUnitInfo `json:"units"`
}

// GroupUnitsByOrganisation merges flat organisation-unit rows into one entry
// per organisation id, in first-seen order and keeping the first-seen
// organisation metadata. Units must be loaded with their Organisation.
func GroupUnitsByOrganisation(units []models.OrganisationUnit) []OrganisationWithUnits {
	grouped := make([]OrganisationWithUnits, 0, len(units))
	index := make(map[string]int, len(units))

	for _, unit := range units {
		pos, seen := index[unit.OrganisationID]
		if !seen {
			org := unit.Organisation
			pos = len(grouped)
			index[unit.OrganisationID] = pos
			grouped = append(grouped, OrganisationWithUnits{
				ID:       unit.OrganisationID,
				Name:     org.Name,
				Acronym:  org.Acronym,
				IsShadow: org.IsShadow,
				Units:    make([]OrganisationUnitInfo, 0, 2),
			})
		}
		grouped[pos].Units = append(grouped[pos].Units, OrganisationUnitInfo{
			ID:       unit.OrganisationUnitID,
			Name:     unit.Name,
			Acronym:  unit.Acronym,
			IsShadow: unit.IsShadow,
		})
	}

	return grouped
}
