package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OTPServiceImpl implements domain.OTPService using Redis persistence
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	hasher          domain.CodeHasher
	redisClient     *redis.Client
	config          OTPConfig
	logger          *zap.Logger
}

type OTPConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

// NewOTPService creates a new Redis-based OTP service
func NewOTPService(notificationSvc domain.NotificationService, hasher domain.CodeHasher, redisClient *redis.Client, config OTPConfig, logger *zap.Logger) domain.OTPService {
	if config.Length <= 0 {
		config.Length = domain.OTPCodeLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		hasher:          hasher,
		redisClient:     redisClient,
		config:          config,
		logger:          logger,
	}
}

func otpKey(phone string) string      { return fmt.Sprintf("otp:%s", phone) }
func attemptsKey(phone string) string { return fmt.Sprintf("otp:att:%s", phone) }

// Send implements domain.OTPService. A new code replaces any previous one.
func (s *OTPServiceImpl) Send(ctx context.Context, phone string) error {
	code, err := s.generateSecureCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP code: %w", err)
	}

	hashed, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("failed to hash OTP code: %w", err)
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, otpKey(phone), hashed, s.config.TTL)
	pipe.Set(ctx, attemptsKey(phone), 0, s.config.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store OTP in Redis: %w", err)
	}

	message := fmt.Sprintf("Your Civic verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		s.redisClient.Del(ctx, otpKey(phone), attemptsKey(phone))
		return fmt.Errorf("failed to send OTP SMS: %w", err)
	}

	s.logger.Debug("otp issued", zap.String("phone", phone))
	return nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code string) (bool, error) {
	attempts, err := s.redisClient.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}

	if s.config.MaxAttempts > 0 && attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, otpKey(phone), attemptsKey(phone))
		return false, domain.ErrOTPMaxAttempts
	}

	stored, err := s.redisClient.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		// Incr recreated the counter without a TTL
		s.redisClient.Del(ctx, attemptsKey(phone))
		return false, domain.ErrOTPNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get OTP from Redis: %w", err)
	}

	if !s.hasher.Verify(stored, code) {
		return false, domain.ErrOTPInvalid
	}

	s.redisClient.Del(ctx, otpKey(phone), attemptsKey(phone))
	return true, nil
}

// generateSecureCode generates a cryptographically secure OTP code
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

// AcceptAnyCodeService accepts every syntactically complete code. It stands in
// for a verification channel in development builds.
type AcceptAnyCodeService struct {
	logger *zap.Logger
}

// NewAcceptAnyCodeService creates the development OTP service
func NewAcceptAnyCodeService(logger *zap.Logger) domain.OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcceptAnyCodeService{logger: logger}
}

// Send implements domain.OTPService
func (s *AcceptAnyCodeService) Send(ctx context.Context, phone string) error {
	s.logger.Info("[DEV OTP] any 6-digit code will be accepted", zap.String("phone", phone))
	return nil
}

// Verify implements domain.OTPService
func (s *AcceptAnyCodeService) Verify(ctx context.Context, phone, code string) (bool, error) {
	return domain.IsCompleteCode(code), nil
}
