package models

import "time"

// StartingTokens is the usage credit granted to every new account.
const StartingTokens = 4

// User represents a registered API account
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"` // bcrypt output, salt embedded
	Tokens       int       `json:"tokens" bson:"tokens"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
