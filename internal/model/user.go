package model

// User represents an application user record as stored in the
// `users` table. The password is never kept in plain text; only
// the bcrypt validation hash is stored, and it can only be
// compared against, never reversed.
//
// Fields:
//  ID                 – primary key identifier of the user.
//  Username           – unique username, may be changed later.
//  PasswordValidation – bcrypt hash used to validate the password.
type User struct {
	ID                 uint64 // users.id
	Username           string // users.username
	PasswordValidation string // users.password_validation
}
