package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: submissions table mirroring the intake form plus CRM
	// reference ids and sync metadata.
	{
		`CREATE TABLE submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id TEXT UNIQUE NOT NULL,

			neon_caregiver_id TEXT,
			neon_social_worker_id TEXT,
			neon_service_id TEXT,

			request_type TEXT,
			general_request_sub_type TEXT,
			relationship TEXT,

			caregiver_first_name TEXT,
			caregiver_last_name TEXT,
			caregiver_email TEXT,
			caregiver_phone TEXT,
			alternative_phone TEXT,
			caregiver_street TEXT,
			caregiver_city TEXT,
			caregiver_state TEXT,
			caregiver_zip TEXT,
			caregiver_county TEXT,

			social_worker_first_name TEXT,
			social_worker_last_name TEXT,
			social_worker_email TEXT,
			social_worker_phone TEXT,
			alternative_social_worker_phone TEXT,
			social_worker_county TEXT,

			child_first_name TEXT,
			child_last_name TEXT,
			child_age TEXT,
			child_dob TEXT,
			child_gender TEXT,
			child_ethnicity TEXT,
			child_placement_type TEXT,

			pickup_date TEXT,
			pickup_time TEXT,
			pickup_location TEXT,
			completion_contact TEXT,
			is_licensed_foster TEXT,
			licensing_agency TEXT,
			additional_info TEXT,

			sync_status TEXT NOT NULL DEFAULT 'pending',
			last_synced_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_submissions_caregiver ON submissions(neon_caregiver_id)`,
		`CREATE INDEX idx_submissions_social_worker ON submissions(neon_social_worker_id)`,
		`CREATE INDEX idx_submissions_created ON submissions(created_at)`,
	},
}
