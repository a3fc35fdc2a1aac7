package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/common"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/dbx"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/auth"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/blacklist"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/config"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/models"
	calcrepo "github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/calculations"
	refreshtokensrepo "github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/refreshtokens"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/repomanager"
	usersrepo "github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/users"
)

// -------- test fakes --------

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return h
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	updateOut *models.User
	updateErr error

	updatePasswordErr  error
	updatedPasswordFor string

	deleteErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return u, nil
}
func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	f.updatedPasswordFor = id
	return nil
}
func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr  error
	deleted []string

	delByUserErr error

	createErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	return f.createErr
}
func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}
func (f *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID string) error {
	return f.delByUserErr
}

type fakeCalcRepo struct {
	createOut *models.Calculation
	createErr error

	getOut *models.Calculation
	getErr error

	listOut []*models.Calculation
	listErr error

	updateOut *models.Calculation
	updateErr error

	deleteErr error
}

func (f *fakeCalcRepo) Create(ctx context.Context, c *models.Calculation) (*models.Calculation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return c, nil
}
func (f *fakeCalcRepo) GetByID(ctx context.Context, userID, id string) (*models.Calculation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeCalcRepo) ListByUser(ctx context.Context, userID string) ([]*models.Calculation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeCalcRepo) Update(ctx context.Context, c *models.Calculation) (*models.Calculation, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return c, nil
}
func (f *fakeCalcRepo) Delete(ctx context.Context, userID, id string) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	c *fakeCalcRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Calculations(db dbx.DBTX) calcrepo.Repository           { return m.c }

type fakeBlacklist struct {
	added      map[string]time.Duration
	addErr     error
	containsIn bool
	contErr    error
}

func (f *fakeBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if f.addErr != nil {
		return f.addErr
	}
	if f.added == nil {
		f.added = map[string]time.Duration{}
	}
	f.added[jti] = ttl
	return nil
}
func (f *fakeBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	return f.containsIn, f.contErr
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	return newUserServiceBL(t, db, rm, blacklist.Noop{})
}

func newUserServiceBL(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager, bl blacklist.Blacklist) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, bl, cfg)
}

// -------- tests --------

func TestRegister_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rmOK := &fakeRepoManager{
		u: &fakeUsersRepo{createOut: &models.User{ID: "42", Username: "alice"}},
		r: &fakeRefreshRepo{},
	}
	sOK := newUserService(t, db, rmOK)
	u, err := sOK.Register(context.Background(), RegisterParams{Username: "alice", Email: "a@b.c", Password: "secret1"})
	if err != nil || u.ID != "42" {
		t.Fatalf("Register ok: got (%v, %v)", u, err)
	}

	// short password never reaches the repository
	_, err = sOK.Register(context.Background(), RegisterParams{Username: "alice", Email: "a@b.c", Password: "abc"})
	if !errors.Is(err, common.ErrorPasswordTooShort) {
		t.Fatalf("Register short password: want ErrorPasswordTooShort, got %v", err)
	}

	rmDup := &fakeRepoManager{
		u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists},
		r: &fakeRefreshRepo{},
	}
	sDup := newUserService(t, db, rmDup)
	_, err = sDup.Register(context.Background(), RegisterParams{Username: "alice", Email: "a@b.c", Password: "secret1"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("Register duplicate: want ErrorAlreadyExists, got %v", err)
	}

	rmErr := &fakeRepoManager{
		u: &fakeUsersRepo{createErr: errBoom{}},
		r: &fakeRefreshRepo{},
	}
	sErr := newUserService(t, db, rmErr)
	_, err = sErr.Register(context.Background(), RegisterParams{Username: "bob", Email: "b@b.c", Password: "secret1"})
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("Register expected wrapped error, got %v", err)
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash := mustHash(t, "right")

	// not found → unauthorized
	rmNF := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: common.ErrorNotFound},
		r: &fakeRefreshRepo{},
	}
	sNF := newUserService(t, db, rmNF)
	if _, err := sNF.Login(context.Background(), "ghost", "x"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("notfound → unauthorized, got %v", err)
	}

	// internal error
	rmIE := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: errBoom{}},
		r: &fakeRefreshRepo{},
	}
	sIE := newUserService(t, db, rmIE)
	if _, err := sIE.Login(context.Background(), "u", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("internal → ErrorInternal, got %v", err)
	}

	// inactive account → unauthorized
	rmIA := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash, IsActive: false}},
		r: &fakeRefreshRepo{},
	}
	sIA := newUserService(t, db, rmIA)
	if _, err := sIA.Login(context.Background(), "u", "right"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("inactive → unauthorized, got %v", err)
	}

	// wrong password → unauthorized
	rmWP := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash, IsActive: true}},
		r: &fakeRefreshRepo{},
	}
	sWP := newUserService(t, db, rmWP)
	if _, err := sWP.Login(context.Background(), "u", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	rmOK := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash, IsActive: true}},
		r: &fakeRefreshRepo{},
	}
	sOK := newUserService(t, db, rmOK)
	pair, err := sOK.Login(context.Background(), "u", "right")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Login success: pair=%+v err=%v", pair, err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
		},
	}
	s := newUserService(t, db, rm)

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRefreshRepo{findErr: common.ErrorNotFound}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "unknown")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-1 * time.Minute)},
		},
	}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshToken_FindErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRefreshRepo{findErr: errBoom{}}}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefreshToken_DeleteErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
			delErr:  errBoom{},
		},
	}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error deleting refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	bl := &fakeBlacklist{}
	refresh := &fakeRefreshRepo{}
	rm := &fakeRepoManager{r: refresh}
	s := newUserServiceBL(t, db, rm, bl)

	claims := &auth.Claims{}
	claims.ID = "jti-1"
	claims.ExpiresAt = nil
	claims.UserID = "u1"

	// no expiry claim → nothing to blacklist, refresh token still removed
	if err := s.Logout(context.Background(), claims, "refresh-abc"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if len(bl.added) != 0 {
		t.Fatalf("expected no blacklist entries, got %v", bl.added)
	}
	if len(refresh.deleted) != 1 || refresh.deleted[0] != "refresh-abc" {
		t.Fatalf("refresh token not deleted: %v", refresh.deleted)
	}

	// with expiry → jti becomes revoked
	tok, err := auth.GenerateToken("u1", []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	parsed, err := auth.ParseToken(tok, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if err := s.Logout(context.Background(), parsed, ""); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, ok := bl.added[parsed.ID]; !ok {
		t.Fatalf("jti %q not blacklisted: %v", parsed.ID, bl.added)
	}
}

func TestLogout_BlacklistErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	bl := &fakeBlacklist{addErr: errBoom{}}
	rm := &fakeRepoManager{r: &fakeRefreshRepo{}}
	s := newUserServiceBL(t, db, rm, bl)

	tok, _ := auth.GenerateToken("u1", []byte("k"), time.Hour)
	parsed, _ := auth.ParseToken(tok, []byte("k"))

	err := s.Logout(context.Background(), parsed, "")
	if err == nil || !regexp.MustCompile(`error revoking access token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped blacklist error, got %v", err)
	}
}

func TestAuthenticate_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()
	rm := &fakeRepoManager{}

	tok, err := auth.GenerateToken("u1", []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	sOK := newUserServiceBL(t, db, rm, &fakeBlacklist{})
	claims, err := sOK.Authenticate(context.Background(), tok)
	if err != nil || claims.UserID != "u1" {
		t.Fatalf("Authenticate ok: claims=%+v err=%v", claims, err)
	}

	sRev := newUserServiceBL(t, db, rm, &fakeBlacklist{containsIn: true})
	if _, err := sRev.Authenticate(context.Background(), tok); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("revoked → ErrTokenRevoked, got %v", err)
	}

	sErr := newUserServiceBL(t, db, rm, &fakeBlacklist{contErr: errBoom{}})
	if _, err := sErr.Authenticate(context.Background(), tok); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("blacklist error → ErrorInternal, got %v", err)
	}

	if _, err := sOK.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("garbage → ErrInvalidToken, got %v", err)
	}
}

func TestUpdateProfile_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Username: "alice", Email: "a@b.c"}},
		r: &fakeRefreshRepo{},
	}
	s := newUserService(t, db, rm)

	// all-nil params
	if _, err := s.UpdateProfile(context.Background(), "u1", UpdateProfileParams{}); !errors.Is(err, common.ErrorNoFields) {
		t.Fatalf("no fields → ErrorNoFields, got %v", err)
	}

	newName := "alice2"
	u, err := s.UpdateProfile(context.Background(), "u1", UpdateProfileParams{Username: &newName})
	if err != nil || u.Username != "alice2" || u.Email != "a@b.c" {
		t.Fatalf("partial update: user=%+v err=%v", u, err)
	}

	rmDup := &fakeRepoManager{
		u: &fakeUsersRepo{
			getOut:    &models.User{ID: "u1", Username: "alice"},
			updateErr: common.ErrorAlreadyExists,
		},
		r: &fakeRefreshRepo{},
	}
	sDup := newUserService(t, db, rmDup)
	if _, err := sDup.UpdateProfile(context.Background(), "u1", UpdateProfileParams{Username: &newName}); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("duplicate → ErrorAlreadyExists, got %v", err)
	}
}

func TestChangePassword_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash := mustHash(t, "oldpassword")
	usersRepo := &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash}}
	rm := &fakeRepoManager{u: usersRepo, r: &fakeRefreshRepo{}}
	s := newUserService(t, db, rm)

	if err := s.ChangePassword(context.Background(), "u1", "nope", "newpassword"); !errors.Is(err, common.ErrorWrongPassword) {
		t.Fatalf("wrong current → ErrorWrongPassword, got %v", err)
	}
	if err := s.ChangePassword(context.Background(), "u1", "oldpassword", "abc"); !errors.Is(err, common.ErrorPasswordTooShort) {
		t.Fatalf("short new → ErrorPasswordTooShort, got %v", err)
	}
	if err := s.ChangePassword(context.Background(), "u1", "oldpassword", "oldpassword"); !errors.Is(err, common.ErrorSamePassword) {
		t.Fatalf("same new → ErrorSamePassword, got %v", err)
	}
	if err := s.ChangePassword(context.Background(), "u1", "oldpassword", "newpassword"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
	if usersRepo.updatedPasswordFor != "u1" {
		t.Fatalf("UpdatePassword not called for u1")
	}
}

func TestDeleteAccount(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, r: &fakeRefreshRepo{}}
	s := newUserService(t, db, rm)

	if err := s.DeleteAccount(context.Background(), "u1"); err != nil {
		t.Fatalf("DeleteAccount error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteAccount_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{deleteErr: common.ErrorNotFound}, r: &fakeRefreshRepo{}}
	s := newUserService(t, db, rm)

	if err := s.DeleteAccount(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
