package form

// Result is the outcome of validating a submission against its required
// field set.
type Result struct {
	Valid   bool
	Missing []string
}

// Validate checks each required field against the submission and collects
// every missing one, in required-set order. A field is missing when it is
// absent, nil, the empty string, or boolean false.
func Validate(sub Submission, required []string) Result {
	var missing []string
	for _, field := range required {
		if !sub.Present(field) {
			missing = append(missing, field)
		}
	}
	return Result{Valid: len(missing) == 0, Missing: missing}
}
