package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kavehz/nft-drop-ledger/internal/model"
	"github.com/kavehz/nft-drop-ledger/internal/utils"
)

// UserRepo provides access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user with a freshly generated wallet address and
// returns the ID and the address. The corresponding funding account is
// created by the caller so both rows land before the handler responds.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, "", err
	}
	wallet := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, wallet_address) VALUES (?,?,?,?)",
		email, hash, role, wallet)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, "", ErrEmailExists
		}
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	return uint64(id), wallet, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,wallet_address,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.WalletAddress, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,wallet_address,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.WalletAddress, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
