package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arielmz/skycast-be/internal/auth"
	"github.com/arielmz/skycast-be/internal/models"
)

// Sentinel errors for the user store. Handlers translate these onto the
// HTTP error taxonomy.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("bad credentials")
	ErrResetInvalid   = errors.New("reset token invalid or expired")
)

// UserUpdate carries a partial profile update. Nil fields are left
// untouched; a non-nil Password is re-hashed before the write.
type UserUpdate struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=1"`
	Deactivated *bool   `json:"deactivated"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	CreateUser(firstName, lastName, email, password string) (models.User, error)
	UpdateUser(id string, update UserUpdate) error
	DeleteUser(id string) error
	Authenticate(email, password string) (models.User, error)
	ListUsers() ([]models.User, error)
	ListPlaces(userID string) ([]models.Place, error)
	AddPlace(userID string, place models.Place) error
	RemovePlace(userID, placeID string) error
	SetDefaultPlace(userID string, place models.Place) error
	GetSettings(userID string) (models.Settings, error)
	UpdateSettings(userID string, settings models.Settings) error
	SetResetToken(email string) (string, error)
	ResetPassword(token, newPassword string) error
}

// UserService provides business logic for user accounts and preferences.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, deactivated,
	default_place_json, places_json, settings_json,
	reset_password_token, reset_password_expires, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user         models.User
		defaultPlace sql.NullString
		placesJSON   string
		settingsJSON string
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Role, &user.Deactivated, &defaultPlace, &placesJSON, &settingsJSON,
		&resetToken, &resetExpires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	if defaultPlace.Valid {
		var place models.Place
		if err := json.Unmarshal([]byte(defaultPlace.String), &place); err != nil {
			return models.User{}, fmt.Errorf("corrupt default place for user %s: %w", user.ID, err)
		}
		user.DefaultPlace = &place
	}
	if err := json.Unmarshal([]byte(placesJSON), &user.Places); err != nil {
		return models.User{}, fmt.Errorf("corrupt places for user %s: %w", user.ID, err)
	}
	if user.Places == nil {
		user.Places = []models.Place{}
	}
	if err := json.Unmarshal([]byte(settingsJSON), &user.Settings); err != nil {
		return models.User{}, fmt.Errorf("corrupt settings for user %s: %w", user.ID, err)
	}
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		user.ResetExpires = &resetExpires.Time
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the
// password hash for credential verification.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser registers a new account, hashing the password before the
// record is persisted. Returns ErrEmailTaken if the email is registered.
func (s *UserService) CreateUser(firstName, lastName, email, password string) (models.User, error) {
	if _, err := s.GetUserByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleUser,
		Places:       []models.Place{},
		Settings:     models.DefaultSettings(),
	}

	settingsJSON, err := json.Marshal(user.Settings)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, email, password_hash, first_name, last_name, role, places_json, settings_json) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, "[]", string(settingsJSON),
	)
	if err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(user.ID)
}

// UpdateUser applies a partial profile update. A password change is
// re-hashed before the write; plaintext never reaches the store.
func (s *UserService) UpdateUser(id string, update UserUpdate) error {
	query := "UPDATE users SET updated_at = CURRENT_TIMESTAMP"
	args := []interface{}{}

	if update.FirstName != nil {
		query += ", first_name = ?"
		args = append(args, *update.FirstName)
	}
	if update.LastName != nil {
		query += ", last_name = ?"
		args = append(args, *update.LastName)
	}
	if update.Email != nil {
		query += ", email = ?"
		args = append(args, *update.Email)
	}
	if update.Password != nil {
		hashed, err := auth.HashPassword(*update.Password)
		if err != nil {
			return fmt.Errorf("failed to hash new password: %w", err)
		}
		query += ", password_hash = ?"
		args = append(args, hashed)
	}
	if update.Deactivated != nil {
		query += ", deactivated = ?"
		args = append(args, *update.Deactivated)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// DeleteUser removes a user from the database. Store failures always
// surface to the caller; a delete is never reported as a best-effort
// success.
func (s *UserService) DeleteUser(id string) error {
	result, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// Authenticate verifies a user's credentials (the local strategy). A
// missing account and a wrong password both collapse into
// ErrBadCredentials so callers cannot tell which check failed.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, ErrBadCredentials
	}
	return user, nil
}

// ListUsers returns all user records. Callers must gate this behind admin
// authorization.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListPlaces returns the user's saved places in insertion order.
func (s *UserService) ListPlaces(userID string) ([]models.Place, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return user.Places, nil
}

// AddPlace saves a place for the user if not already present. Adding a
// place whose id is already in the set is a no-op, keeping placeId unique.
func (s *UserService) AddPlace(userID string, place models.Place) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.HasPlace(place.PlaceID) {
		return nil
	}
	return s.writePlaces(userID, append(user.Places, place))
}

// RemovePlace removes the place with the given id from the user's set.
// Removing an absent place is a no-op.
func (s *UserService) RemovePlace(userID, placeID string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	kept := user.Places[:0]
	for _, p := range user.Places {
		if p.PlaceID != placeID {
			kept = append(kept, p)
		}
	}
	return s.writePlaces(userID, kept)
}

func (s *UserService) writePlaces(userID string, places []models.Place) error {
	data, err := json.Marshal(places)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(
		"UPDATE users SET places_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(data), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// SetDefaultPlace records the user's default place for weather lookups.
func (s *UserService) SetDefaultPlace(userID string, place models.Place) error {
	data, err := json.Marshal(place)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(
		"UPDATE users SET default_place_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(data), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// GetSettings returns the user's preference settings.
func (s *UserService) GetSettings(userID string) (models.Settings, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.Settings{}, err
	}
	return user.Settings, nil
}

// UpdateSettings replaces the user's preference settings.
func (s *UserService) UpdateSettings(userID string, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(
		"UPDATE users SET settings_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(data), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(result)
}

// SetResetToken creates a password-recovery token for the account with the
// given email, valid for one hour.
func (s *UserService) SetResetToken(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	token := uuid.New().String()
	expires := time.Now().Add(time.Hour)
	_, err = s.db.Exec(
		"UPDATE users SET reset_password_token = ?, reset_password_expires = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		token, expires, user.ID,
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword sets a new password for the account holding a live reset
// token, then clears the token.
func (s *UserService) ResetPassword(token, newPassword string) error {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE reset_password_token = ?", token)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResetInvalid
		}
		return err
	}
	if user.ResetExpires == nil || time.Now().After(*user.ResetExpires) {
		return ErrResetInvalid
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE users SET password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hashed, user.ID,
	)
	return err
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
