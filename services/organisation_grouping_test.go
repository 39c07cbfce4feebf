package services

import (
	"testing"

	"innovation-tracking-api/models"
)

func TestGroupUnitsByOrganisationMergesInFirstSeenOrder(t *testing.T) {
	north := models.Organisation{OrganisationID: "org-north", Name: "North Trust"}
	south := models.Organisation{OrganisationID: "org-south", Name: "South Trust"}

	units := []models.OrganisationUnit{
		{OrganisationUnitID: "u1", OrganisationID: "org-north", Name: "Cardiology", Organisation: north},
		{OrganisationUnitID: "u2", OrganisationID: "org-south", Name: "Oncology", Organisation: south},
		{OrganisationUnitID: "u3", OrganisationID: "org-north", Name: "Radiology", Organisation: north},
	}

	grouped := GroupUnitsByOrganisation(units)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 organisations, got %d", len(grouped))
	}

	if grouped[0].ID != "org-north" || grouped[1].ID != "org-south" {
		t.Fatalf("expected first-seen order north then south, got %s then %s", grouped[0].ID, grouped[1].ID)
	}
	if len(grouped[0].Units) != 2 {
		t.Fatalf("expected north units merged into one entry, got %d units", len(grouped[0].Units))
	}
	if grouped[0].Units[0].ID != "u1" || grouped[0].Units[1].ID != "u3" {
		t.Fatalf("expected unit order preserved, got %s then %s", grouped[0].Units[0].ID, grouped[0].Units[1].ID)
	}
	if len(grouped[1].Units) != 1 || grouped[1].Units[0].ID != "u2" {
		t.Fatalf("unexpected south units: %+v", grouped[1].Units)
	}
	if grouped[0].Name != "North Trust" {
		t.Fatalf("expected organisation metadata from the relation, got %q", grouped[0].Name)
	}
}

func TestGroupUnitsByOrganisationEmptyInput(t *testing.T) {
	grouped := GroupUnitsByOrganisation(nil)
	if len(grouped) != 0 {
		t.Fatalf("expected empty result, got %+v", grouped)
	}
}
