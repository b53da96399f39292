package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/mkamalov/bazar/app/jobs"
	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/mkamalov/bazar/pkg/crypt"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/metrics"
	"github.com/mkamalov/bazar/pkg/queue"
	"github.com/mkamalov/bazar/pkg/session"
	"gorm.io/gorm"
)

// Registration staging keys. The whole flow lives in the server-side
// session until the account row is created in the final stage.
const (
	regContactKey  = "reg.contact"
	regChannelKey  = "reg.channel"
	regOTPKey      = "reg.otp"
	regExpiresKey  = "reg.expires"
	regVerifiedKey = "reg.verified"
)

// OTPTTL bounds how long a staged code stays valid.
const OTPTTL = 10 * time.Minute

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

// StartRegistration stages a contact address and mails it a one-time
// code. Nothing is written to the users table yet.
func (s *AuthService) StartRegistration(sess *session.Session, contact string) (string, error) {
	contact = strings.TrimSpace(contact)
	channel := contactChannel(contact)
	if channel == "" {
		return "", NewValidationError("contact", "The contact must be a valid email address or phone number.")
	}

	if _, err := s.users.FindByContact(contact); err == nil {
		return "", NewValidationError("contact", "This contact is already registered.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	sealed, err := crypt.Encrypt(code)
	if err != nil {
		return "", err
	}

	sess.Set(regContactKey, contact)
	sess.Set(regChannelKey, channel)
	sess.Set(regOTPKey, sealed)
	sess.Set(regExpiresKey, time.Now().Add(OTPTTL).Format(time.RFC3339))
	sess.Set(regVerifiedKey, false)

	switch channel {
	case "email":
		if err := queue.Dispatch(&jobs.OTPEmail{To: contact, Code: code}); err != nil {
			return "", err
		}
	case "phone":
		// No SMS provider yet; codes for phone contacts surface in the log.
		logger.Info("otp issued for phone contact", "contact", contact)
	}
	metrics.OTPIssued.WithLabelValues(channel).Inc()

	return channel, nil
}

// VerifyOTP checks a submitted code against the staged one.
func (s *AuthService) VerifyOTP(sess *session.Session, code string) error {
	sealed, ok := sess.GetString(regOTPKey)
	if !ok {
		return ErrInvalidState
	}
	expires, ok := sess.GetTime(regExpiresKey)
	if !ok || time.Now().After(expires) {
		return NewValidationError("code", "The code has expired. Request a new one.")
	}

	want, err := crypt.Decrypt(sealed)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(code)) != 1 {
		return NewValidationError("code", "The code is incorrect.")
	}

	sess.Set(regVerifiedKey, true)
	return nil
}

// CompleteRegistration creates the account for a verified contact and
// returns the user with a signed token.
func (s *AuthService) CompleteRegistration(sess *session.Session, username, password string) (models.User, string, error) {
	if !sess.GetBool(regVerifiedKey) {
		return models.User{}, "", ErrInvalidState
	}
	contact, _ := sess.GetString(regContactKey)
	channel, _ := sess.GetString(regChannelKey)

	if _, err := s.users.FindByUsername(username); err == nil {
		return models.User{}, "", NewValidationError("username", "This username is taken.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}

	user := models.User{
		Username: username,
		Password: hash,
		Role:     "user",
	}
	switch channel {
	case "email":
		user.Email = &contact
		user.EmailVerified = true
	case "phone":
		user.Phone = &contact
		user.PhoneVerified = true
	}

	if err := s.users.Create(&user); err != nil {
		return models.User{}, "", err
	}

	for _, key := range []string{regContactKey, regChannelKey, regOTPKey, regExpiresKey, regVerifiedKey} {
		sess.Delete(key)
	}

	if channel == "email" {
		if err := queue.Dispatch(&jobs.WelcomeEmail{To: contact, Username: username}); err != nil {
			logger.Warn("welcome mail dispatch failed", "error", err)
		}
	}

	token, err := auth.GenerateToken(user.ID, user.Role, nil)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// UpdateProfile fills in the optional final registration stage.
func (s *AuthService) UpdateProfile(userID uint, bio, avatarPath string) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return models.User{}, translateNotFound(err)
	}
	if bio != "" {
		user.Bio = bio
	}
	if avatarPath != "" {
		user.AvatarPath = avatarPath
	}
	if err := s.users.Update(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login authenticates by username and password.
func (s *AuthService) Login(username, password string) (models.User, string, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", NewValidationError("username", "These credentials do not match our records.")
		}
		return models.User{}, "", err
	}
	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, "", NewValidationError("username", "These credentials do not match our records.")
	}

	token, err := auth.GenerateToken(user.ID, user.Role, user.SellerID())
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// BecomeSeller attaches a seller profile to the account and issues a
// token carrying the new seller identity.
func (s *AuthService) BecomeSeller(userID uint, shopName, description string) (models.User, string, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return models.User{}, "", translateNotFound(err)
	}
	if user.IsSeller() {
		return models.User{}, "", ErrConflict
	}

	profile := models.SellerProfile{
		UserID:      user.ID,
		ShopName:    shopName,
		Description: description,
	}
	if err := s.users.CreateSellerProfile(&profile); err != nil {
		return models.User{}, "", err
	}
	user.Seller = &profile

	token, err := auth.GenerateToken(user.ID, user.Role, &profile.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Me loads the caller's own account.
func (s *AuthService) Me(userID uint) (models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return models.User{}, translateNotFound(err)
	}
	return user, nil
}

func contactChannel(contact string) string {
	if contact == "" {
		return ""
	}
	if strings.Contains(contact, "@") && strings.Contains(contact, ".") {
		return "email"
	}
	digits := strings.TrimPrefix(contact, "+")
	if len(digits) >= 7 && strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
		return "phone"
	}
	return ""
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
