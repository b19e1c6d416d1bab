package notify

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hivechat/hivechat/internal/database"
	"github.com/hivechat/hivechat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type sentCode struct {
	recipient string
	code      string
}

type fakeSender struct {
	transport string
	sent      chan sentCode
}

func newFakeSender(transport string) *fakeSender {
	return &fakeSender{transport: transport, sent: make(chan sentCode, 1)}
}

func (f *fakeSender) Transport() string {
	return f.transport
}

func (f *fakeSender) Send(recipient, code string) error {
	f.sent <- sentCode{recipient: recipient, code: code}
	return nil
}

func TestRequest(t *testing.T) {
	db := &database.MockMasterRepository{}
	db.On("GetActiveOTP", 1).Return(database.OTPCode{}, sql.ErrNoRows)

	var stored database.CreateOTPParams
	db.On("CreateOTP", mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(0).(database.CreateOTPParams)
	}).Return(database.OTPCode{Id: 9, AccountId: 1}, nil)

	sender := newFakeSender("email")
	svc := NewOTPService(testutil.TestLogger(t), db, sender)

	err := svc.Request(1, "email", "alice@example.com")
	assert.NoError(t, err)

	select {
	case sent := <-sender.sent:
		assert.Equal(t, "alice@example.com", sent.recipient)
		assert.Len(t, sent.code, 6, "expected a six digit code")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(sent.code)),
			"stored hash should match the delivered code")
		assert.NotEqual(t, sent.code, stored.CodeHash, "code must never be stored in cleartext")
	case <-time.After(time.Second):
		t.Fatal("timeout: code was not delivered")
	}

	assert.Equal(t, "email", stored.Transport)
	assert.WithinDuration(t, time.Now().UTC().Add(codeTTL), stored.ExpiresAt, time.Minute)
}

func TestRequest_resendTooSoon(t *testing.T) {
	db := &database.MockMasterRepository{}
	db.On("GetActiveOTP", 1).Return(database.OTPCode{
		Id:        9,
		AccountId: 1,
		CreatedAt: time.Now().UTC().Add(-5 * time.Second),
	}, nil)

	sender := newFakeSender("email")
	svc := NewOTPService(testutil.TestLogger(t), db, sender)

	err := svc.Request(1, "email", "alice@example.com")
	assert.ErrorIs(t, err, ErrResendTooSoon)
	db.AssertNotCalled(t, "CreateOTP", mock.Anything)
}

func TestRequest_unsupportedTransport(t *testing.T) {
	svc := NewOTPService(testutil.TestLogger(t), &database.MockMasterRepository{}, newFakeSender("email"))

	err := svc.Request(1, "carrier-pigeon", "alice@example.com")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	db := &database.MockMasterRepository{}
	db.On("GetActiveOTP", 1).Return(database.OTPCode{
		Id:        9,
		AccountId: 1,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}, nil)
	db.On("ConsumeOTP", 9).Return(nil)
	db.On("MarkAccountVerified", 1).Return(nil)

	svc := NewOTPService(testutil.TestLogger(t), db)

	assert.NoError(t, svc.Verify(1, "123456"))
	db.AssertCalled(t, "ConsumeOTP", 9)
	db.AssertCalled(t, "MarkAccountVerified", 1)
}

func TestVerify_wrongCode(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)

	db := &database.MockMasterRepository{}
	db.On("GetActiveOTP", 1).Return(database.OTPCode{
		Id:        9,
		AccountId: 1,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}, nil)

	svc := NewOTPService(testutil.TestLogger(t), db)

	assert.ErrorIs(t, svc.Verify(1, "654321"), ErrCodeInvalid)
	db.AssertNotCalled(t, "ConsumeOTP", mock.Anything)
}

func TestVerify_expiredCode(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)

	db := &database.MockMasterRepository{}
	db.On("GetActiveOTP", 1).Return(database.OTPCode{
		Id:        9,
		AccountId: 1,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}, nil)

	svc := NewOTPService(testutil.TestLogger(t), db)

	assert.ErrorIs(t, svc.Verify(1, "123456"), ErrCodeInvalid)
	db.AssertNotCalled(t, "MarkAccountVerified", mock.Anything)
}
