package syncer

import (
	"github.com/lotcarolinas/intake/internal/crm"
	"github.com/lotcarolinas/intake/internal/datastore"
)

// accountToRow maps CRM account fields onto submissions-table columns.
func accountToRow(acct crm.Account) map[string]string {
	updates := map[string]string{
		"caregiver_first_name": acct.FirstName,
		"caregiver_last_name":  acct.LastName,
		"caregiver_email":      acct.Email,
		"caregiver_phone":      acct.Phone,
	}
	if acct.Address != nil {
		updates["caregiver_street"] = acct.Address.Street
		updates["caregiver_city"] = acct.Address.City
		updates["caregiver_state"] = acct.Address.State
		updates["caregiver_zip"] = acct.Address.Zip
		updates["caregiver_county"] = acct.Address.County
	}
	return updates
}

// rowToIdentity maps submissions-table columns onto a CRM identity. The
// phone falls back to the alternative number when the primary is absent.
func rowToIdentity(rec *datastore.SubmissionRecord) crm.Identity {
	phone := rec.CaregiverPhone
	if phone == "" {
		phone = rec.AlternativePhone
	}
	return crm.Identity{
		FirstName: rec.CaregiverFirstName,
		LastName:  rec.CaregiverLastName,
		Email:     rec.CaregiverEmail,
		Phone:     phone,
		Street:    rec.CaregiverStreet,
		City:      rec.CaregiverCity,
		State:     rec.CaregiverState,
		Zip:       rec.CaregiverZip,
		County:    rec.CaregiverCounty,
	}
}
