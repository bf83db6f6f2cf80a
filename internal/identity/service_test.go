package identity

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), NewHasher(bcrypt.MinCost))
}

func validRegistration(email string) Registration {
	return Registration{Name: "Ravi", Email: email, Password: "p1", Phone: "+919800000000"}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration("  A@X.com "))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)
	require.NotEqual(t, "p1", user.PasswordHash)

	authed, err := svc.Authenticate(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)

	authed, err = svc.Authenticate(ctx, "A@X.COM", "p1")
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration("a@x.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration("A@x.com"))
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterConcurrentSameEmailCreatesOne(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, validRegistration("race@x.com"))
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrDuplicateEmail)
	}
	require.Equal(t, 1, success)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration("a@x.com"))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	negative := -1.0

	cases := map[string]Registration{
		"missing name":     {Email: "a@x.com", Password: "p", Phone: "1"},
		"missing email":    {Name: "n", Password: "p", Phone: "1"},
		"malformed email":  {Name: "n", Email: "not-an-email", Password: "p", Phone: "1"},
		"display name":     {Name: "n", Email: "Ravi <a@x.com>", Password: "p", Phone: "1"},
		"missing password": {Name: "n", Email: "a@x.com", Phone: "1"},
		"long password":    {Name: "n", Email: "a@x.com", Password: strings.Repeat("x", 73), Phone: "1"},
		"missing phone":    {Name: "n", Email: "a@x.com", Password: "p"},
		"negative farm":    {Name: "n", Email: "a@x.com", Password: "p", Phone: "1", FarmSize: &negative},
	}
	for name, reg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), reg)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration("a@x.com"))
	require.NoError(t, err)

	name := "Ravi Kumar"
	location := "Guntur"
	size := 4.5
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, FarmLocation: &location, FarmSize: &size})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, user.Phone, updated.Phone)

	stored, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, name, stored.Name)
	require.Equal(t, location, *stored.FarmLocation)
	require.Equal(t, size, *stored.FarmSize)
	require.Equal(t, "a@x.com", stored.Email)

	blank := " "
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Phone: &blank})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(ctx, "missing", ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticateUnknownEmailReportsDecoyFailure(t *testing.T) {
	// bcrypt rejects costs above MaxCost, so building the decoy hash fails.
	svc := NewService(NewMemoryRepository(), &Hasher{cost: bcrypt.MaxCost + 1})

	_, err := svc.Authenticate(context.Background(), "nobody@x.com", "p1")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorContains(t, err, "decoy hash")
}

func TestAuthenticateUnknownEmailUsesDecoy(t *testing.T) {
	svc := newTestService()

	_, err := svc.Authenticate(context.Background(), "nobody@x.com", "p1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	decoy, err := svc.decoyHash()
	require.NoError(t, err)
	require.NotEmpty(t, decoy)
}
