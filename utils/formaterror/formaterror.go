package formaterror

import "strings"

// FormatError maps driver error text to user-facing field errors.
func FormatError(err string) map[string]string {
	errorMessages := make(map[string]string)

	lowered := strings.ToLower(err)
	if strings.Contains(lowered, "title") {
		errorMessages["Taken_title"] = "Title is already taken"
	}
	if strings.Contains(lowered, "idx_event_follows_unique") {
		errorMessages["Already_following"] = "Already following this event"
	}
	if strings.Contains(lowered, "tx_hash") {
		errorMessages["Duplicate_tx"] = "Transaction already recorded"
	}
	if strings.Contains(lowered, "duplicate") || strings.Contains(lowered, "unique") {
		if len(errorMessages) == 0 {
			errorMessages["Duplicate"] = "Record already exists"
		}
	}
	if len(errorMessages) > 0 {
		return errorMessages
	}

	errorMessages["Incorrect_details"] = "Incorrect details"
	return errorMessages
}
