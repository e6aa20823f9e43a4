package submit

import (
	"strings"
	"time"

	"github.com/lotcarolinas/intake/internal/form"
)

// AgeGroup buckets a child's age into the CRM's age-group vocabulary.
func AgeGroup(age int) string {
	switch {
	case age <= 2:
		return "Baby (0-2)"
	case age <= 5:
		return "Toddler (3-5)"
	case age <= 12:
		return "School Age (6-12)"
	default:
		return "Teen (13+)"
	}
}

// MapGender translates the form's gender vocabulary to the CRM's. Unmapped
// values pass through as empty.
func MapGender(gender string) string {
	switch gender {
	case "Male":
		return "Boy"
	case "Female":
		return "Girl"
	default:
		return ""
	}
}

// pickupLocationMap is the fixed translation from form pickup locations to
// the CRM's location list. Anything unmapped resolves to "Other".
var pickupLocationMap = map[string]string{
	"Belmont/Keith Hawthorne":                               "Other",
	"Buncombe County/Asheville":                             "Other",
	"Burke County/Morganton - Jamestown Road":               "Other",
	"Catawba County/Hickory - S. Center Street":             "Other",
	"Cleveland County/Shelby - E. Dixon Blvd.":              "Other",
	"Cornelius/Lake Norman- Torrence Chapel Rd. Cornelius":  "Lake Norman",
	"LOTC Office - S. Myrtle School Rd, Gastonia":           "LOTC Office",
	"McDowell County/Marion - Worley Road":                  "Other",
	"Hendrick Motors/Charlotte":                             "Hendrick Honda",
	"Mecklenburg County/Northlake":                          "Other",
	"Rutherford County/Forest City":                         "Other",
	"Stanly County/Albemarle - Aquadale Road":               "Other",
}

// MapPickupLocation translates a pickup location to the CRM vocabulary,
// defaulting to "Other".
func MapPickupLocation(location string) string {
	if mapped, ok := pickupLocationMap[location]; ok {
		return mapped
	}
	return "Other"
}

// ExtractCounty pulls the county name out of a "County, ST" formatted
// string. South Carolina counties get an "(SC)" suffix to disambiguate them
// in the CRM's county list.
func ExtractCounty(county string) string {
	if county == "" {
		return ""
	}
	name, _, _ := strings.Cut(county, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.Contains(county, ", SC") {
		name += " (SC)"
	}
	return name
}

// serviceFields builds the CRM custom-object record for one submission. Any
// of the three account ids may be empty when that resolution failed; record
// creation never blocks on a single link.
func serviceFields(sub form.Submission, childID, caregiverID, socialWorkerID string, today time.Time) map[string]any {
	fields := map[string]any{
		"Child_c":         childID,
		"Caregiver_c":     caregiverID,
		"Social_Worker_c": socialWorkerID,

		"Service_Type_c": sub.Str("requestType"),
		"Service_Date_c": today.Format("01/02/2006"),
		"Status_c":       "Pending",

		"Pickup_Location_c": MapPickupLocation(sub.Str("pickupLocation")),

		"Child_Name_c":        sub.Str("childFirstName"),
		"Child_Preferences_c": sub.Str("additionalInfo"),
	}

	// County comes from the social worker first, then the caregiver.
	countySource := sub.Str("socialWorkerCounty")
	if countySource == "" {
		countySource = sub.Str("caregiverCounty")
	}
	if county := ExtractCounty(countySource); county != "" {
		fields["County_c"] = county
	}

	if age, ok := sub.Age("childAge"); ok {
		fields["Child_Age_c"] = age
		fields["Age_Group_c"] = AgeGroup(age)
	}
	if gender := MapGender(sub.Str("childGender")); gender != "" {
		fields["Gender_c"] = gender
	}

	fields["Notes_c"] = serviceNotes(sub, fields["Pickup_Location_c"].(string))
	return fields
}

// serviceNotes collects form answers that have no dedicated custom-object
// field into a single notes block.
func serviceNotes(sub form.Submission, pickupMapped string) string {
	var notes []string
	add := func(label, field string) {
		if v := sub.Str(field); v != "" {
			notes = append(notes, label+": "+v)
		}
	}

	add("Relationship", "relationship")
	add("Contact when ready", "completionContact")
	add("Licensed Foster", "isLicensedFoster")
	add("Placement Type", "childPlacementType")
	add("Ethnicity", "childEthnicity")
	add("Nickname", "childNickname")
	add("DOB", "childDOB")

	// Keep the original location wording when it collapsed to Other.
	if pickupMapped == "Other" {
		add("Pickup Location Detail", "pickupLocation")
	}

	return strings.Join(notes, "\n")
}
