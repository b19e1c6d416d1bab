package notify

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/hivechat/hivechat/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeTTL        = 5 * time.Minute
	resendInterval = 30 * time.Second
)

var (
	ErrResendTooSoon = fmt.Errorf("a code was sent recently, wait before requesting another")
	ErrCodeInvalid   = fmt.Errorf("code is invalid or expired")
)

// OTPService issues and verifies one-time verification codes. Codes are
// stored hashed; only the recipient ever sees the cleartext.
type OTPService struct {
	log     *log.Logger
	db      database.MasterRepository
	senders map[string]Sender
}

func NewOTPService(logger *log.Logger, db database.MasterRepository, senders ...Sender) *OTPService {
	byTransport := make(map[string]Sender, len(senders))
	for _, s := range senders {
		byTransport[s.Transport()] = s
	}

	return &OTPService{
		log:     logger,
		db:      db,
		senders: byTransport,
	}
}

// Request issues a fresh code for the account and delivers it. A second
// request inside the resend window is rejected to limit gateway traffic.
func (s *OTPService) Request(accountId int, transport, recipient string) error {
	sender, ok := s.senders[transport]
	if !ok {
		return fmt.Errorf("unsupported transport %q", transport)
	}

	if existing, err := s.db.GetActiveOTP(accountId); err == nil {
		if time.Since(existing.CreatedAt) < resendInterval {
			return ErrResendTooSoon
		}
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if _, err := s.db.CreateOTP(database.CreateOTPParams{
		AccountId: accountId,
		CodeHash:  string(hash),
		Transport: transport,
		ExpiresAt: time.Now().UTC().Add(codeTTL),
	}); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	// Delivery happens in the background so a slow gateway never blocks
	// the request on a sender timeout.
	go func() {
		if err := sender.Send(recipient, code); err != nil {
			s.log.Printf("deliver verification code to account %d: %s", accountId, err)
		}
	}()

	return nil
}

// Verify checks the submitted code against the account's active code,
// consumes it on success and marks the account verified.
func (s *OTPService) Verify(accountId int, code string) error {
	otp, err := s.db.GetActiveOTP(accountId)
	if err != nil {
		return ErrCodeInvalid
	}

	if time.Now().UTC().After(otp.ExpiresAt) {
		return ErrCodeInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)); err != nil {
		return ErrCodeInvalid
	}

	if err := s.db.ConsumeOTP(otp.Id); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}

	if err := s.db.MarkAccountVerified(accountId); err != nil {
		return fmt.Errorf("mark account verified: %w", err)
	}

	return nil
}

// generateCode produces a uniformly random six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
