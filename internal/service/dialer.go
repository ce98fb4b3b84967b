package service

import (
	"context"

	"github.com/bencullenn/chronicle-voice/internal/models"

	"go.uber.org/zap"
)

// Call modes. Severance routes to the alternate assistant persona.
const (
	ModeNormal    = "Normal"
	ModeSeverance = "Severance"
)

// CallCreator places outbound calls with the voice provider.
type CallCreator interface {
	CreateCall(ctx context.Context, assistantID, phoneNumberID, number string) (*models.CallStatus, error)
}

// DialerConfig maps call modes onto provider assistant IDs.
type DialerConfig struct {
	NormalAssistantID    string
	SeveranceAssistantID string
	PhoneNumberID        string
	DefaultNumber        string
}

// Dialer initiates outbound journal calls.
type Dialer struct {
	voice  CallCreator
	cfg    DialerConfig
	logger *zap.Logger
}

func NewDialer(voice CallCreator, cfg DialerConfig, logger *zap.Logger) *Dialer {
	return &Dialer{voice: voice, cfg: cfg, logger: logger}
}

// StartCall places a call to phoneNumber, falling back to the configured
// default number. Mode selects the assistant; anything but Severance is
// treated as Normal.
func (d *Dialer) StartCall(ctx context.Context, phoneNumber, mode string) (*models.CallStatus, error) {
	number := phoneNumber
	if number == "" {
		number = d.cfg.DefaultNumber
	}
	if number == "" {
		return nil, &models.ValidationError{Msg: "no phone number provided and no default set"}
	}

	if mode != ModeSeverance {
		mode = ModeNormal
	}

	assistantID := d.cfg.NormalAssistantID
	if mode == ModeSeverance {
		assistantID = d.cfg.SeveranceAssistantID
	}

	d.logger.Info("Placing outbound call",
		zap.String("mode", mode),
		zap.String("assistant_id", assistantID))

	status, err := d.voice.CreateCall(ctx, assistantID, d.cfg.PhoneNumberID, number)
	if err != nil {
		return nil, err
	}

	status.Mode = mode
	return status, nil
}
