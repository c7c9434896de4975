package domain

// Identity describes an issued identity token.
type Identity struct {
	Email string
	Token string
}
