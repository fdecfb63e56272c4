package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/storage"
)

const testSecret = "test-secret"

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newFakeDirectory(users ...models.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]models.User)}
	for _, u := range users {
		d.users[u.Email] = u
	}
	return d
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return models.User{}, d.err
	}
	u, ok := d.users[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) FindByID(_ context.Context, id int64) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (d *fakeDirectory) remove(email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, email)
}

func (d *fakeDirectory) put(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.Email] = u
}

type fixture struct {
	dir    *fakeDirectory
	hasher *PasswordHasher
	tokens *TokenManager
	auth   *Authenticator
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		hasher: NewPasswordHasher(bcrypt.MinCost),
		now:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	adminHash, err := f.hasher.Hash("conexa-admin")
	require.NoError(t, err)
	userHash, err := f.hasher.Hash("conexa")
	require.NoError(t, err)

	f.dir = newFakeDirectory(
		models.User{ID: 1, Email: "admin@example.com", Name: "Admin User", Role: models.RoleAdmin, PasswordHash: adminHash},
		models.User{ID: 2, Email: "user1@example.com", Name: "Normal User 1", Role: models.RoleUser, PasswordHash: userHash},
	)
	f.tokens, err = NewTokenManager(testSecret, "holonet-test", WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)
	f.auth, err = NewAuthenticator(f.dir, f.tokens, f.hasher)
	require.NoError(t, err)
	return f
}

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	for _, plain := range []string{"conexa", "conexa-admin", "with spaces and ünïcode"} {
		hash, err := h.Hash(plain)
		require.NoError(t, err)
		assert.True(t, h.Verify(plain, hash))
		assert.False(t, h.Verify(plain+"x", hash))
		assert.False(t, h.Verify(strings.ToUpper(plain), hash))
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("  ", "issuer")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueEncodesClaims(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Issue(models.User{ID: 42, Email: "x@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "x@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "holonet-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, f.now.Add(TokenTTL).Equal(claims.ExpiresAt.Time))
}

func TestResolveAfterIssue(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"admin@example.com", "user1@example.com"} {
		stored, err := f.dir.FindByEmail(context.Background(), email)
		require.NoError(t, err)

		token, err := f.tokens.Issue(stored)
		require.NoError(t, err)

		p, err := f.auth.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, p.User.ID)
		assert.Equal(t, stored.Role, p.Role())
		assert.Empty(t, p.User.PasswordHash)
		assert.True(t, f.now.Add(TokenTTL).Equal(p.ExpiresAt))
	}
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	f.now = f.now.Add(TokenTTL)
	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	f.now = f.now.Add(time.Hour)
	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveAcceptsTokenJustBeforeExpiry(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	f.now = f.now.Add(TokenTTL - time.Second)
	_, err = f.auth.Resolve(context.Background(), token)
	assert.NoError(t, err)
}

func TestResolveRejectsTamperedPayload(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "user1@example.com", "conexa")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	for i := range payload {
		tampered := append([]byte(nil), payload...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		forged := parts[0] + "." + string(tampered) + "." + parts[2]
		_, err := f.auth.Resolve(context.Background(), forged)
		require.ErrorIs(t, err, ErrUnauthenticated, "byte %d", i)
	}
}

func TestResolveRejectsForeignSecret(t *testing.T) {
	f := newFixture(t)
	other, err := NewTokenManager("another-secret", "holonet-test", WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)

	token, err := other.Issue(models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveRejectsMalformedToken(t *testing.T) {
	f := newFixture(t)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := f.auth.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
}

func TestResolveRejectsUnknownRoleClaim(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Issue(models.User{ID: 1, Email: "admin@example.com", Role: models.Role("ROOT")})
	require.NoError(t, err)

	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveUsesTokenRoleNotDirectoryRole(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	demoted, err := f.dir.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	demoted.Role = models.RoleUser
	demoted.Name = "Demoted Admin"
	f.dir.put(demoted)

	p, err := f.auth.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role())
	assert.Equal(t, "Demoted Admin", p.User.Name)
}

func TestResolveRejectsReusedEmail(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "user1@example.com", "conexa")
	require.NoError(t, err)

	replacement, err := f.dir.FindByEmail(context.Background(), "user1@example.com")
	require.NoError(t, err)
	replacement.ID = 99
	f.dir.put(replacement)

	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveDirectoryFailureIsNotUnauthenticated(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	f.dir.err = errors.New("connection refused")
	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginDirectoryFailure(t *testing.T) {
	f := newFixture(t)
	f.dir.err = context.DeadlineExceeded
	_, err := f.auth.Login(context.Background(), "admin@example.com", "conexa-admin")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginStripsHash(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.Login(context.Background(), " admin@example.com ", "conexa-admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthorize(t *testing.T) {
	admin := Principal{User: models.User{ID: 1, Role: models.RoleAdmin}}
	user := Principal{User: models.User{ID: 2, Role: models.RoleUser}}

	for _, p := range []Principal{admin, user} {
		assert.Equal(t, Allow, Authorize(p, nil))
		assert.Equal(t, Allow, Authorize(p, Require()))
		assert.Equal(t, Allow, Authorize(p, Require(models.RoleAdmin, models.RoleUser)))
	}
	assert.Equal(t, Allow, Authorize(admin, Require(models.RoleAdmin)))
	assert.Equal(t, Deny, Authorize(user, Require(models.RoleAdmin)))
	assert.Equal(t, Deny, Authorize(admin, Require(models.RoleUser)))

	assert.NoError(t, Check(admin, Require(models.RoleAdmin)))
	assert.ErrorIs(t, Check(user, Require(models.RoleAdmin)), ErrForbidden)
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
}

func TestScenarioAdminLoginResolveAllow(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	p, err := f.auth.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role())
	assert.Equal(t, Allow, Authorize(p, Require(models.RoleAdmin)))
}

func TestScenarioUnknownAndWrongPasswordLookAlike(t *testing.T) {
	f := newFixture(t)
	_, ghostErr := f.auth.Login(context.Background(), "ghost@example.com", "whatever")
	_, wrongErr := f.auth.Login(context.Background(), "admin@example.com", "wrong")

	assert.ErrorIs(t, ghostErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, ghostErr.Error(), wrongErr.Error())
}

func TestScenarioDeletedIdentity(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "user1@example.com", "conexa")
	require.NoError(t, err)

	f.dir.remove("user1@example.com")
	_, err = f.auth.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestScenarioUserOnAdminOperation(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "user1@example.com", "conexa")
	require.NoError(t, err)

	p, err := f.auth.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Deny, Authorize(p, Require(models.RoleAdmin)))
	assert.ErrorIs(t, Check(p, Require(models.RoleAdmin)), ErrForbidden)
}

func TestAuthenticateRequest(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	p, err := f.auth.AuthenticateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.User.ID)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	_, err = f.auth.AuthenticateRequest(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticateRequestCustomExtractor(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "admin@example.com", "conexa-admin")
	require.NoError(t, err)

	a, err := NewAuthenticator(f.dir, f.tokens, f.hasher, WithTokenExtractor(func(r *http.Request) (string, error) {
		return r.URL.Query().Get("access_token"), nil
	}))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/films?access_token="+token, nil)
	p, err := a.AuthenticateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role())
}

func TestBearerTokenFromHeader(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"valid":        {header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		"lowercase":    {header: "bearer abc", want: "abc", ok: true},
		"missing":      {header: ""},
		"basic scheme": {header: "Basic dXNlcjpwYXNz"},
		"no token":     {header: "Bearer "},
		"no space":     {header: "Bearerabc"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, err := BearerTokenFromHeader(req)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := Principal{User: models.User{ID: 3, Role: models.RoleUser}}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestResolveConcurrent(t *testing.T) {
	f := newFixture(t)
	token, err := f.auth.IssueToken(context.Background(), "user1@example.com", "conexa")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.auth.Resolve(context.Background(), token); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("resolve: %v", err)
	}
}
