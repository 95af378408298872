/*
policy.go - Pure authorization predicates

PURPOSE:
  Decides which Principal may do what. Pure functions with no I/O;
  callers must evaluate them before any store access and fail with
  ErrAccessDenied on rejection.

RULES:
  - A therapist may access any customer's records and manage users.
  - A customer may access only their own records.
  - A therapist may delete any user except their own account.
*/
package clinic

// CanAccessCustomerRecords reports whether the principal may read the
// target customer's records and derived aggregates.
func CanAccessCustomerRecords(p Principal, targetCustomerID string) bool {
	if p.IsTherapist() {
		return true
	}
	return p.ID == targetCustomerID
}

// CanManageUsers reports whether the principal may list users, record
// attendance, and view revenue.
func CanManageUsers(p Principal) bool {
	return p.IsTherapist()
}

// CanDeleteUser reports whether the principal may delete the target
// user. A therapist cannot delete their own account.
func CanDeleteUser(p Principal, targetUserID string) bool {
	return p.IsTherapist() && p.ID != targetUserID
}
