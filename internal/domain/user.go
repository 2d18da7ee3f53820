package domain

// User is an account row from the credential store. The core never
// creates users; they are seeded by an external collaborator.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// Identity is the claim set extracted from a verified bearer credential.
type Identity struct {
	ID       int64
	Username string
	Role     Role
}
