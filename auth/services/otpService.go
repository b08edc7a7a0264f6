package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"study-abroad-backend/config"

	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TOTPService manages the optional authenticator-app second factor for
// administrators. Secrets live in Redis under totp:<user id>.
type TOTPService interface {
	GenerateTOTPSecret(ctx context.Context, userID, email string) (*TOTPSetup, error)
	ValidateTOTPCode(ctx context.Context, userID, code string) bool
	EnableTOTP(ctx context.Context, userID, code string) error
	DisableTOTP(ctx context.Context, userID string) error
	IsTOTPEnabled(ctx context.Context, userID string) bool
}

type TOTPSetup struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qr_code_url"`
	ManualKey string `json:"manual_key"`
}

type TOTPData struct {
	Secret    string    `json:"secret"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

type totpService struct {
	redisClient *redis.Client
	issuer      string
}

func NewTOTPService(redisClient *redis.Client, issuer string) TOTPService {
	return &totpService{redisClient: redisClient, issuer: issuer}
}

func totpKey(userID string) string {
	return "totp:" + userID
}

func (s *totpService) load(ctx context.Context, userID string) (*TOTPData, bool) {
	data := s.redisClient.Get(ctx, totpKey(userID)).Val()
	if data == "" {
		return nil, false
	}
	var totpData TOTPData
	if err := json.Unmarshal([]byte(data), &totpData); err != nil {
		config.Logger.Error("Failed to unmarshal TOTP data", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &totpData, true
}

func (s *totpService) store(ctx context.Context, userID string, data TOTPData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, totpKey(userID), string(jsonData), ttl).Err()
}

// GenerateTOTPSecret creates a pending secret that must be confirmed with
// EnableTOTP within ten minutes.
func (s *totpService) GenerateTOTPSecret(ctx context.Context, userID, email string) (*TOTPSetup, error) {
	if existing, ok := s.load(ctx, userID); ok && existing.Enabled {
		return nil, fmt.Errorf("TOTP is already enabled")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
		SecretSize:  32,
	})
	if err != nil {
		config.Logger.Error("Failed to generate TOTP secret", zap.Error(err))
		return nil, err
	}

	data := TOTPData{Secret: key.Secret(), Enabled: false, CreatedAt: time.Now()}
	if err := s.store(ctx, userID, data, 10*time.Minute); err != nil {
		config.Logger.Error("Failed to store TOTP secret in Redis", zap.Error(err))
		return nil, err
	}

	return &TOTPSetup{
		Secret:    key.Secret(),
		QRCodeURL: key.URL(),
		ManualKey: key.Secret(),
	}, nil
}

func (s *totpService) ValidateTOTPCode(ctx context.Context, userID, code string) bool {
	data, ok := s.load(ctx, userID)
	if !ok {
		config.Logger.Warn("TOTP data not found for user", zap.String("user_id", userID))
		return false
	}
	valid := totp.Validate(code, data.Secret)
	if !valid {
		config.Logger.Warn("Invalid TOTP code provided", zap.String("user_id", userID))
	}
	return valid
}

func (s *totpService) EnableTOTP(ctx context.Context, userID, code string) error {
	data, ok := s.load(ctx, userID)
	if !ok {
		return fmt.Errorf("TOTP setup not found")
	}
	if !totp.Validate(code, data.Secret) {
		return fmt.Errorf("invalid TOTP code")
	}

	data.Enabled = true
	if err := s.store(ctx, userID, *data, 0); err != nil {
		config.Logger.Error("Failed to enable TOTP in Redis", zap.Error(err))
		return err
	}

	config.Logger.Info("TOTP enabled for user", zap.String("user_id", userID))
	return nil
}

func (s *totpService) DisableTOTP(ctx context.Context, userID string) error {
	if err := s.redisClient.Del(ctx, totpKey(userID)).Err(); err != nil {
		config.Logger.Error("Failed to disable TOTP in Redis", zap.Error(err))
		return err
	}
	config.Logger.Info("TOTP disabled for user", zap.String("user_id", userID))
	return nil
}

func (s *totpService) IsTOTPEnabled(ctx context.Context, userID string) bool {
	data, ok := s.load(ctx, userID)
	return ok && data.Enabled
}
