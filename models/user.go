package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Email        string    `gorm:"size:100;not null;unique" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

/*
caches:
	User:$email
*/

// userCacheEntry is the redis representation of a user. User keeps
// `json:"-"` on the hash so API responses never carry it; the cache
// entry must round-trip it or every cache-hit login compares against "".
type userCacheEntry struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (user *User) toCacheEntry() *userCacheEntry {
	return &userCacheEntry{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (entry *userCacheEntry) toUser() *User {
	return &User{
		ID:           entry.ID,
		Email:        entry.Email,
		PasswordHash: entry.PasswordHash,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

func (user User) RemoveInstanceRedis() error {
	if err := config.RemoveRedisKey("User:" + user.Email); err != nil {
		return err
	}
	return nil
}

// Register creates a new account. Email is normalized before the
// uniqueness check; only a bcrypt hash of the password is stored.
func Register(ctx context.Context, email string, password string) (*User, error) {

	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	if err := utils.ValidateUnique[User](ctx, "email = ?", email); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:        email,
		PasswordHash: string(hashed),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		// Two concurrent registrations can both pass the count check;
		// the unique index is the arbiter.
		if isDuplicateEntry(err) {
			return nil, utils.ErrorDuplicateRecord
		}
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and returns the account. Unknown email and
// wrong password produce the same error so callers cannot enumerate users.
func Login(ctx context.Context, email string, password string) (*User, error) {

	email = utils.NormalizeEmail(email)

	db := config.GetDB()
	var user *User

	var cached userCacheEntry
	exists, err := config.GetRedisObject("User:"+email, &cached)
	if err != nil {
		return nil, err
	}
	if exists {
		user = cached.toUser()
	} else {
		var stored User
		err = db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&stored).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorInvalidCredentials
			}
			return nil, err
		}
		user = &stored
	}

	// Any compare failure reads as bad credentials; a corrupt or
	// truncated hash must not leak as a storage error.
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, utils.ErrorInvalidCredentials
	}

	// best-effort session cache; nil-safe when redis is absent
	_ = config.SetRedisObject("User:"+user.Email, user.toCacheEntry(), 24*time.Hour)

	return user, nil
}
