package directory

import "time"

// Person is one directory entry. Name, Surname and Birthday are populated
// from legacy column names through declared mapper overrides; ID and Email
// bind through default column matching.
type Person struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `json:"name"`
	Surname  string    `json:"surname"`
	Birthday time.Time `json:"birthday"`
	Email    string    `db:"email" json:"email"`
}
