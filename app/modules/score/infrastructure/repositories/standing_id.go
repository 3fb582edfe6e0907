package scoredb

import "strings"

// SubdivisionStandingID packs a subdivision's composite key into a single
// orderable id of the form "US/CA" for the generic ranking code. ISO 3166
// codes never contain '/'.
func SubdivisionStandingID(nationalityID, subdivisionID string) string {
	return nationalityID + "/" + subdivisionID
}

// SplitSubdivisionStandingID is the inverse of SubdivisionStandingID.
func SplitSubdivisionStandingID(id string) (nationalityID, subdivisionID string) {
	nationalityID, subdivisionID, _ = strings.Cut(id, "/")
	return nationalityID, subdivisionID
}
