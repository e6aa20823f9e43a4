package form

// baseRequiredFields are required on every submission regardless of answers.
var baseRequiredFields = []string{
	"requestType", "relationship",
	"socialWorkerFirstName", "socialWorkerLastName", "socialWorkerEmail", "socialWorkerCounty",
	"completionContact", "pickupDate", "pickupTime", "pickupLocation",
	"childFirstName", "childLastName",
	"childPlacementType", "childGender", "childAge", "childDOB", "childEthnicity",
	"isLicensedFoster", "agreeToTerms",
}

// RequiredFields computes the ordered set of required field names for a
// submission. Requirements are appended in dependency order: a later
// condition may test a field required by an earlier one. Condition fields
// that are absent or hold an unexpected value simply leave their branch
// untaken; the resolver never fails.
func RequiredFields(sub Submission) []string {
	r := newFieldSet(baseRequiredFields)

	// Life Box requests for youth aged 18+ are self-directed: no caregiver,
	// but the youth's own contact info is required instead.
	age, ageKnown := sub.Age("childAge")
	lifeBox18Plus := sub.Str("requestType") == "Life Box" && ageKnown && age >= 18

	if lifeBox18Plus {
		r.add("childPhone", "childEmail")
	} else {
		r.add("caregiverFirstName", "caregiverLastName", "caregiverStreet", "caregiverZip",
			"caregiverCity", "caregiverState", "caregiverCounty")

		if sub.Str("noMobileNumber") == "on" {
			r.add("alternativePhone")
		} else {
			r.add("caregiverPhone")
		}

		if sub.Str("knowCaregiverEmail") == "yes" {
			r.add("caregiverEmail")
		}
	}

	if sub.Str("noSocialWorkerMobileNumber") == "on" {
		r.add("alternativeSocialWorkerPhone")
	} else {
		r.add("socialWorkerPhone")
	}

	switch sub.Str("requestType") {
	case "General Request":
		r.add("generalRequestSubType")
	case "Bags of Hope":
		r.add("shirtSize", "pantSize", "sockShoeSize", "undergarmentSize", "diaperSize")
	case "Shoes of Hope":
		r.add("childGradeFall", "shoeGender", "underwearGender")

		switch sub.Str("shoeGender") {
		case "Girl":
			r.add("girlShoeSize")
		case "Boy":
			r.add("boyShoeSize")
		}
		switch sub.Str("underwearGender") {
		case "Girl":
			r.add("girlsUnderwearSize")
		case "Boy":
			r.add("boysUnderwearSize")
		}
	}

	if sub.Str("generalRequestSubType") == "Bed" {
		r.add("bedReason")
	}

	if sub.Str("childPlacementType") == "Foster - Group Home placement" {
		r.add("groupHomeName", "groupHomePhone")
	}

	if sub.Str("relationship") == "Other" {
		r.add("relationshipOtherType", "personCompletingFirstName", "personCompletingLastName",
			"personCompletingPhone", "personCompletingTextable", "personCompletingEmail")

		if sub.Str("relationshipOtherType") == "Other" {
			r.add("relationshipOtherCustom")
		}
		if sub.Str("personCompletingTextable") == "No" {
			r.add("personCompletingAltPhone")
		}
	}

	if sub.Str("completionContact") == "Other" {
		r.add("completionContactOtherType")

		if sub.Str("completionContactOtherType") == "Other" {
			r.add("completionContactOtherCustom")
		}
	}

	if sub.Str("relationship") == "DSS Social Worker" && sub.Str("socialWorkerCanText") == "No" {
		r.add("alternativeSocialWorkerPhone")
	}

	if sub.Str("isLicensedFoster") == "Yes" {
		r.add("licensingAgency")
	}

	return r.fields
}

// fieldSet is an ordered set of field names.
type fieldSet struct {
	fields []string
	seen   map[string]bool
}

func newFieldSet(base []string) *fieldSet {
	s := &fieldSet{seen: make(map[string]bool, len(base)*2)}
	s.add(base...)
	return s
}

func (s *fieldSet) add(fields ...string) {
	for _, f := range fields {
		if s.seen[f] {
			continue
		}
		s.seen[f] = true
		s.fields = append(s.fields, f)
	}
}
