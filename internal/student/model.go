package student

import "github.com/uptrace/bun"

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID             int    `bun:"id,pk,autoincrement" json:"id"`
	Username       string `bun:"username,unique,notnull" json:"username"`
	Email          string `bun:"email,unique,notnull" json:"email"`
	HashedPassword string `bun:"hashed_password,notnull" json:"-"`
}
