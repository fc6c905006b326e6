package sandbox

type entity struct {
	Name         string
	Relationship string // to the family parent; empty for the parent itself
	PayorType    string
	City         string
	State        string
}

type family struct {
	TaxID    string
	Parent   entity
	Children []entity
}

// Payor families used by the generator. Children share the parent's tax id,
// which is what makes parent/child confusion show up as match candidates.
var families = []family{
	{
		TaxID:  "621234567",
		Parent: entity{Name: "Blue Cross Blue Shield of Tennessee", PayorType: "commercial", City: "Chattanooga", State: "TN"},
		Children: []entity{
			{Name: "BlueCare Tennessee", Relationship: "subsidiary", PayorType: "medicaid", City: "Chattanooga", State: "TN"},
			{Name: "BlueAdvantage", Relationship: "brand", PayorType: "medicare", City: "Chattanooga", State: "TN"},
		},
	},
	{
		TaxID:  "060876543",
		Parent: entity{Name: "Aetna Inc.", PayorType: "commercial", City: "Hartford", State: "CT"},
		Children: []entity{
			{Name: "Aetna Better Health", Relationship: "subsidiary", PayorType: "medicaid", City: "Chicago", State: "IL"},
			{Name: "Aetna Medicare", Relationship: "division", PayorType: "medicare", City: "Hartford", State: "CT"},
		},
	},
	{
		TaxID:  "411289245",
		Parent: entity{Name: "UnitedHealthcare", PayorType: "commercial", City: "Minnetonka", State: "MN"},
		Children: []entity{
			{Name: "UnitedHealthcare Community Plan", Relationship: "division", PayorType: "medicaid", City: "Minnetonka", State: "MN"},
			{Name: "Optum Health", Relationship: "affiliate", PayorType: "commercial", City: "Eden Prairie", State: "MN"},
		},
	},
	{
		TaxID:  "954567123",
		Parent: entity{Name: "Kaiser Foundation Health Plan", PayorType: "commercial", City: "Oakland", State: "CA"},
		Children: []entity{
			{Name: "Kaiser Permanente Senior Advantage", Relationship: "brand", PayorType: "medicare", City: "Oakland", State: "CA"},
		},
	},
	{
		TaxID:  "131624096",
		Parent: entity{Name: "Cigna Healthcare", PayorType: "commercial", City: "Bloomfield", State: "CT"},
		Children: []entity{
			{Name: "Cigna Behavioral Health", Relationship: "division", PayorType: "commercial", City: "Eden Prairie", State: "MN"},
		},
	},
	{
		TaxID:  "610647538",
		Parent: entity{Name: "Humana Inc.", PayorType: "commercial", City: "Louisville", State: "KY"},
		Children: []entity{
			{Name: "Humana Military", Relationship: "subsidiary", PayorType: "tricare", City: "Louisville", State: "KY"},
			{Name: "CarePlus Health Plans", Relationship: "subsidiary", PayorType: "medicare", City: "Miami", State: "FL"},
		},
	},
	{
		TaxID:  "742839201",
		Parent: entity{Name: "Texas Medicaid and Healthcare Partnership", PayorType: "medicaid", City: "Austin", State: "TX"},
	},
	{
		TaxID:  "860912345",
		Parent: entity{Name: "Mercy Care Plan", PayorType: "medicaid", City: "Phoenix", State: "AZ"},
	},
}

var streets = []string{"Main Street", "Oak Avenue", "Commerce Boulevard", "Lakeview Drive", "Market Road", "Park Avenue"}

var stateNames = map[string]string{
	"TN": "Tennessee", "CT": "Connecticut", "IL": "Illinois", "MN": "Minnesota",
	"CA": "California", "KY": "Kentucky", "FL": "Florida", "TX": "Texas", "AZ": "Arizona",
}
