package domain

// IssueCode classifies a validation problem.
type IssueCode string

const (
	CodeRequiredField      IssueCode = "REQUIRED_FIELD"
	CodeNoAssignments      IssueCode = "NO_ASSIGNMENTS"
	CodeEmptyWorkout       IssueCode = "EMPTY_WORKOUT"
	CodeEmptyProgram       IssueCode = "EMPTY_PROGRAM"
	CodeInvalidDuration    IssueCode = "INVALID_DURATION"
	CodeDurationOutOfRange IssueCode = "DURATION_OUT_OF_RANGE"
	CodeEmptyBlock         IssueCode = "EMPTY_BLOCK"
	CodeMissingInterval    IssueCode = "MISSING_INTERVAL"
	CodeInvalidRepetitions IssueCode = "INVALID_REPETITIONS"

	// Medical codes are only ever emitted as warnings.
	CodeMedicalBodyPart  IssueCode = "MEDICAL_BODY_PART_CONFLICT"
	CodeMedicalIntensity IssueCode = "MEDICAL_INTENSITY_CONFLICT"
	CodeMedicalActivity  IssueCode = "MEDICAL_ACTIVITY_CONFLICT"
	CodeMedicalCheckFail IssueCode = "MEDICAL_CHECK_FAILED"
)

// ValidationIssue is a single error or warning attached to a field path.
type ValidationIssue struct {
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    IssueCode `json:"code"`
}

// ValidationResult groups blocking errors and non-blocking warnings.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// HasError reports whether an error with the given code and field exists.
// An empty field matches any field.
func (r ValidationResult) HasError(code IssueCode, field string) bool {
	return hasIssue(r.Errors, code, field)
}

// HasWarning is HasError for warnings.
func (r ValidationResult) HasWarning(code IssueCode, field string) bool {
	return hasIssue(r.Warnings, code, field)
}

func hasIssue(issues []ValidationIssue, code IssueCode, field string) bool {
	for _, i := range issues {
		if i.Code == code && (field == "" || i.Field == field) {
			return true
		}
	}
	return false
}
