package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
	Delete(ctx context.Context, id uint) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// TokenRepository contract interface
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, token string, data domain.RefreshTokenData, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, token string) (*domain.RefreshTokenData, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error
	GetOTP(ctx context.Context, email string) (string, error)
	DeleteOTP(ctx context.Context, email string) error
}

const (
	verificationCodeTTL = 5 // minutes
	otpTTL              = 10 * time.Minute

	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is only valid for %v minutes`

	SubjectPasswordReset   = "Your Password Reset Code"
	EmailBodyPasswordReset = `Hello %v, your password reset code is <b>%v</b>. It expires in %v minutes.`
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var validRoles = map[string]bool{
	RoleCustomer: true,
	RoleAdmin:    true,
}

type userService struct {
	userRepo                UserRepository
	tokenRepo               TokenRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	jwt                     *utils.JWTManager
	appEmailVerificationKey string
	appDeploymentUrl        string
}

func NewUserService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	jwt *utils.JWTManager,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:                userRepo,
		tokenRepo:               tokenRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		jwt:                     jwt,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
	}
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, domain.NewBadRequest("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, domain.NewBadRequest("password must be at least 6 characters")
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, domain.NewConflict("email already exists")
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, domain.NewInternal("failed to hash password")
	}

	newUser := domain.User{
		FullName:   user.FullName,
		Email:      user.Email,
		Password:   string(passwordHash),
		IsVerified: false,
		Role:       RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	expAt := time.Now().Add(time.Minute * verificationCodeTTL).Unix()

	verificationCode := fmt.Sprintf("%v|%v", newUser.Email, expAt)
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("Failed to encrypt verification code", err)
		return domain.User{}, domain.NewInternal("failed to build verification link")
	}
	strEncode := goshortcute.StringtoBase64Encode(verificationCodeEncrypt)
	activationLink := s.appDeploymentUrl + "/api/v1/users/email-verification/" + strEncode

	err = s.notifRepo.SendEmail(newUser.FullName, newUser.Email, SubjectRegisterAccount,
		fmt.Sprintf(EmailBodyRegisterAccount, newUser.FullName, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Warn("Failed to send verification email", err)
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("Verifying email error", err)
		return domain.NewUnauthorized("invalid or expired url")
	}

	verificationCode := strings.Split(verificationCodeDecrypt, "|")
	if len(verificationCode) != 2 {
		return domain.NewUnauthorized("invalid or expired url")
	}

	email := verificationCode[0]
	ts, err := strconv.ParseInt(verificationCode[1], 10, 64)
	if err != nil {
		return domain.NewUnauthorized("invalid or expired url")
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return domain.NewUnauthorized("invalid or expired url")
	}

	getUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Verifying email error", err)
		return domain.NewUnauthorized("invalid or expired url")
	}

	if getUser.IsVerified {
		return domain.NewUnauthorized("invalid or expired url")
	}

	if err := s.userRepo.UpdateEmailVerification(ctx, getUser.ID, true); err != nil {
		logger.Error("Verify email err", err)
		return err
	}

	return nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (domain.TokenPair, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid credentials")
	}

	if ok := utils.CheckPassword(password, user.Password); !ok {
		logger.Error("User password incorrect")
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid credentials")
	}

	if !user.IsVerified {
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("email address has not been verified")
	}

	pair, err := s.mintTokenPair(ctx, user, ipAddress, userAgent)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	user.Password = ""
	return pair, user, nil
}

func (s *userService) mintTokenPair(ctx context.Context, user domain.User, ipAddress, userAgent string) (domain.TokenPair, error) {
	uid := strconv.FormatUint(uint64(user.ID), 10)

	accessToken, err := s.jwt.GenerateAccessToken(uid, user.Role)
	if err != nil {
		logger.Error("Failed to generate access token", err)
		return domain.TokenPair{}, domain.NewInternal("failed to generate token")
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(uid, user.Role)
	if err != nil {
		logger.Error("Failed to generate refresh token", err)
		return domain.TokenPair{}, domain.NewInternal("failed to generate token")
	}

	now := time.Now()
	err = s.tokenRepo.StoreRefreshToken(ctx, refreshToken, domain.RefreshTokenData{
		UserID:    uid,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.jwt.RefreshTTL()),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}, s.jwt.RefreshTTL())
	if err != nil {
		logger.Error("Failed to store refresh token", err)
		return domain.TokenPair{}, domain.NewInternal("failed to store token")
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken rotates the pair: the presented refresh token is invalidated
// and a new pair is issued.
func (s *userService) RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (domain.TokenPair, domain.User, error) {
	data, err := s.tokenRepo.GetRefreshToken(ctx, oldToken)
	if err != nil {
		logger.Error("Refresh token not found", err)
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid or expired refresh token")
	}

	claims, err := s.jwt.Parse(oldToken)
	if err != nil || claims.TokenType != "refresh" || claims.UserID != data.UserID {
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid or expired refresh token")
	}

	userID, err := strconv.ParseUint(data.UserID, 10, 64)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, uint(userID))
	if err != nil {
		return domain.TokenPair{}, domain.User{}, domain.NewUnauthorized("invalid or expired refresh token")
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, oldToken); err != nil {
		logger.Warn("Failed to delete rotated refresh token", err)
	}

	pair, err := s.mintTokenPair(ctx, user, ipAddress, userAgent)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	user.Password = ""
	return pair, user, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		logger.Error("Failed to logout user", err)
		return err
	}

	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestPasswordReset emails a 6-digit OTP. It always reports success so
// callers cannot probe which emails have accounts.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Debug("Password reset requested for unknown email")
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		logger.Error("Failed to generate otp", err)
		return nil
	}

	if err := s.tokenRepo.StoreOTP(ctx, email, code, otpTTL); err != nil {
		logger.Error("Failed to store otp", err)
		return nil
	}

	err = s.notifRepo.SendEmail(user.FullName, user.Email, SubjectPasswordReset,
		fmt.Sprintf(EmailBodyPasswordReset, user.FullName, code, int(otpTTL.Minutes())))
	if err != nil {
		logger.Warn("Failed to send otp email", err)
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewBadRequest("password must be at least 6 characters")
	}

	stored, err := s.tokenRepo.GetOTP(ctx, email)
	if err != nil || subtle.ConstantTimeCompare([]byte(stored), []byte(otp)) != 1 {
		return domain.NewUnauthorized("invalid or expired otp")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.NewUnauthorized("invalid or expired otp")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.NewInternal("failed to hash password")
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		logger.Error("Failed to reset password", err)
		return err
	}

	if err := s.tokenRepo.DeleteOTP(ctx, email); err != nil {
		logger.Warn("Failed to delete used otp", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// GetAllUsers retrieves all users
func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

// UpdateUser updates user information
func (s *userService) UpdateUser(ctx context.Context, id uint, updateData *domain.User) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if updateData.FullName != "" {
		existingUser.FullName = updateData.FullName
	}

	if updateData.Email != "" {
		if err := s.validate.Var(updateData.Email, "required,email"); err != nil {
			return domain.User{}, domain.NewBadRequest("invalid email format")
		}

		userWithEmail, err := s.userRepo.FindByEmail(ctx, updateData.Email)
		if err == nil && userWithEmail.ID != id {
			return domain.User{}, domain.NewConflict("email already exists")
		}
		existingUser.Email = updateData.Email
	}

	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "required,min=6"); err != nil {
			return domain.User{}, domain.NewBadRequest("password must be at least 6 characters")
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, domain.NewInternal("failed to hash password")
		}
		existingUser.Password = string(passwordHash)
	}

	if updateData.AvatarURL != "" {
		existingUser.AvatarURL = updateData.AvatarURL
	}

	if updateData.Role != "" {
		if !validRoles[updateData.Role] {
			return domain.User{}, domain.NewBadRequest("invalid role")
		}
		existingUser.Role = updateData.Role
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

// DeleteUser soft deletes a user
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		logger.Error("User not found for deletion", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	return nil
}
