package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xerp/xerp/internal/config"
	"github.com/xerp/xerp/internal/models"
)

type memoryOTPStore struct {
	mu      sync.Mutex
	nextID  int32
	rows    []models.OTP
	addErr  error
	now     func() time.Time
	deleted []int32
}

func (s *memoryOTPStore) Add(ctx context.Context, code int32) (*models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.nextID++
	createdAt := time.Now()
	if s.now != nil {
		createdAt = s.now()
	}
	otp := models.OTP{ID: s.nextID, Codes: []int32{code}, CreatedAt: createdAt}
	s.rows = append(s.rows, otp)
	return &otp, nil
}

func (s *memoryOTPStore) FetchAll(ctx context.Context) ([]models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OTP(nil), s.rows...), nil
}

func (s *memoryOTPStore) Delete(ctx context.Context, id int32) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			s.deleted = append(s.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  map[string]int32
	err   error
	calls int
}

func (m *recordingMailer) SendOTP(ctx context.Context, to string, code int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]int32{}
	}
	m.sent[to] = code
	return nil
}

func newTestOTPService(store *memoryOTPStore, mailer *recordingMailer, now time.Time) *OTPService {
	svc := NewOTPService(store, mailer, &config.OTPConfig{Expiry: time.Minute}, quietLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGenerateRandomOTP_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := generateRandomOTP()
		require.NoError(t, err)
		require.GreaterOrEqual(t, code, int32(100000))
		require.LessOrEqual(t, code, int32(999999))
	}
}

func TestSendLoginOTP_StoresAfterDelivery(t *testing.T) {
	store := &memoryOTPStore{}
	mailer := &recordingMailer{}
	svc := newTestOTPService(store, mailer, time.Now())

	otp, err := svc.SendLoginOTP(context.Background(), "user@example.com", "9000000001")
	require.NoError(t, err)
	require.Len(t, store.rows, 1)
	require.Equal(t, []int32{mailer.sent["user@example.com"]}, otp.Codes)
}

func TestSendLoginOTP_DeliveryFailureStoresNothing(t *testing.T) {
	for _, sendErr := range []error{ErrEmailBuild, ErrEmailSend} {
		store := &memoryOTPStore{}
		mailer := &recordingMailer{err: sendErr}
		svc := newTestOTPService(store, mailer, time.Now())

		_, err := svc.SendLoginOTP(context.Background(), "user@example.com", "9000000001")
		require.ErrorIs(t, err, sendErr)
		require.Empty(t, store.rows)
	}
}

func TestSendLoginOTP_StoreFailure(t *testing.T) {
	store := &memoryOTPStore{addErr: errors.New("db down")}
	svc := newTestOTPService(store, &recordingMailer{}, time.Now())

	_, err := svc.SendLoginOTP(context.Background(), "user@example.com", "9000000001")
	require.Error(t, err)
}

func TestSendLoginOTP_ConcurrentEmailsGetIndependentRows(t *testing.T) {
	store := &memoryOTPStore{}
	mailer := &recordingMailer{}
	svc := newTestOTPService(store, mailer, time.Now())

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	errs := make(chan error, len(emails))
	for _, email := range emails {
		go func(email string) {
			_, err := svc.SendLoginOTP(context.Background(), email, "9000000001")
			errs <- err
		}(email)
	}
	for range emails {
		require.NoError(t, <-errs)
	}

	require.Len(t, store.rows, len(emails))
	require.Len(t, mailer.sent, len(emails))
}

func TestVerifyOTP(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"fresh", 5 * time.Second, nil},
		{"exactly one minute", time.Minute, nil},
		{"just over a minute", time.Minute + time.Millisecond, ErrOTPExpired},
		{"long expired", time.Hour, ErrOTPExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryOTPStore{rows: []models.OTP{{ID: 1, Codes: []int32{111111}, CreatedAt: created}}}
			svc := newTestOTPService(store, &recordingMailer{}, created.Add(tc.elapsed))

			err := svc.VerifyOTP(context.Background(), 111111)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.wantErr)
			}
			require.Empty(t, store.rows, "row must be consumed on every outcome")
			require.Equal(t, []int32{1}, store.deleted)

			err = svc.VerifyOTP(context.Background(), 111111)
			require.ErrorIs(t, err, ErrOTPNotFound)
		})
	}
}

func TestVerifyOTP_NotFound(t *testing.T) {
	store := &memoryOTPStore{rows: []models.OTP{{ID: 1, Codes: []int32{111111}, CreatedAt: time.Now()}}}
	svc := newTestOTPService(store, &recordingMailer{}, time.Now())

	err := svc.VerifyOTP(context.Background(), 222222)
	require.ErrorIs(t, err, ErrOTPNotFound)
	require.Len(t, store.rows, 1)
}

func TestVerifyOTP_FirstMatchWins(t *testing.T) {
	now := time.Now()
	store := &memoryOTPStore{rows: []models.OTP{
		{ID: 3, Codes: []int32{111111}, CreatedAt: now},
		{ID: 4, Codes: []int32{222222, 111111}, CreatedAt: now},
	}}
	svc := newTestOTPService(store, &recordingMailer{}, now)

	require.NoError(t, svc.VerifyOTP(context.Background(), 111111))
	require.Equal(t, []int32{3}, store.deleted)
	require.NoError(t, svc.VerifyOTP(context.Background(), 111111))
	require.Equal(t, []int32{3, 4}, store.deleted)
}

// racingStore lets every verifier see the row before any of them deletes it.
type racingStore struct {
	*memoryOTPStore
	ready *sync.WaitGroup
}

func (s *racingStore) FetchAll(ctx context.Context) ([]models.OTP, error) {
	rows, err := s.memoryOTPStore.FetchAll(ctx)
	s.ready.Done()
	s.ready.Wait()
	return rows, err
}

func TestVerifyOTP_ConcurrentConsumesOnce(t *testing.T) {
	const verifiers = 5
	now := time.Now()
	var ready sync.WaitGroup
	ready.Add(verifiers)
	store := &racingStore{
		memoryOTPStore: &memoryOTPStore{rows: []models.OTP{{ID: 9, Codes: []int32{333333}, CreatedAt: now}}},
		ready:          &ready,
	}
	svc := NewOTPService(store, &recordingMailer{}, &config.OTPConfig{Expiry: time.Minute}, quietLogger())

	results := make(chan error, verifiers)
	for i := 0; i < verifiers; i++ {
		go func() { results <- svc.VerifyOTP(context.Background(), 333333) }()
	}

	var verified, notFound int
	for i := 0; i < verifiers; i++ {
		err := <-results
		switch {
		case err == nil:
			verified++
		case errors.Is(err, ErrOTPNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, verified)
	require.Equal(t, verifiers-1, notFound)
}
