package models

import "time"

type Role string

const (
	Student   Role = "student"
	Parent    Role = "parent"
	Volunteer Role = "volunteer"
	Admin     Role = "admin"
)

type User struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}
