package model

import "time"

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json tags
// are omitted because these structs are used internally by the repository
// layer; handlers define separate response types with JSON tags. Every user
// owns exactly one funding account, linked by WalletAddress.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  Role          – name of the role (ADMIN or BUYER).
//  WalletAddress – address of the user's funding account.
//  IsActive      – whether the account is active.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	Role          string    // users.role
	WalletAddress string    // users.wallet_address
	IsActive      bool      // users.is_active
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}
