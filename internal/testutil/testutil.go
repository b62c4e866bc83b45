// Package testutil builds sqlite-backed fixtures shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/williamsps/maintenance-portal/internal/auth"
	"github.com/williamsps/maintenance-portal/internal/db"
	"github.com/williamsps/maintenance-portal/internal/model"
)

const (
	Password  = "password123"
	JWTSecret = "test-secret"
)

var DefaultSupplier = model.Supplier{
	Name:  "Williams Property Service",
	Phone: "0800 945 526",
	Email: "jobs@williamspropertyservice.co.nz",
}

// SetupTestDB opens a private in-memory database named after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err, "open db")

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database, "sqlite"), "migrate")
	return database
}

type Fixtures struct {
	Provider model.Client
	Acme     model.Client
	Globex   model.Client

	Admin       model.User
	Staff       model.User
	AcmeAdmin   model.User
	AcmeUser    model.User
	GlobexAdmin model.User
}

// Seed creates the provider organization, two tenants and one user per role.
func Seed(t *testing.T, database *gorm.DB) *Fixtures {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	f := &Fixtures{
		Provider: model.Client{Name: "Williams Property Service", Code: "WPS", Status: model.ClientStatusActive, Version: 1},
		Acme:     model.Client{Name: "Acme Properties", Code: "ACME", Status: model.ClientStatusActive, Version: 1},
		Globex:   model.Client{Name: "Globex Housing", Code: "GLOBEX", Status: model.ClientStatusActive, Version: 1},
	}
	for _, c := range []*model.Client{&f.Provider, &f.Acme, &f.Globex} {
		require.NoError(t, database.Create(c).Error)
	}

	user := func(client model.Client, email, name string, role model.Role) model.User {
		u := model.User{
			ClientID:     client.ID,
			Email:        email,
			Name:         name,
			Phone:        "021 000 000",
			Role:         role,
			PasswordHash: string(hash),
			Active:       true,
		}
		require.NoError(t, database.Create(&u).Error)
		return u
	}
	f.Admin = user(f.Provider, "admin@wps.test", "Ada Admin", model.RoleAdmin)
	f.Staff = user(f.Provider, "staff@wps.test", "Sam Staff", model.RoleStaff)
	f.AcmeAdmin = user(f.Acme, "manager@acme.test", "Carla Manager", model.RoleClientAdmin)
	f.AcmeUser = user(f.Acme, "tenant@acme.test", "Tom Tenant", model.RoleClient)
	f.GlobexAdmin = user(f.Globex, "manager@globex.test", "Gail Manager", model.RoleClientAdmin)
	return f
}

func Principal(u model.User) model.Principal {
	return u.Principal()
}

// AdminIn is an admin principal switched into the given client.
func AdminIn(u model.User, clientID uuid.UUID) model.Principal {
	p := u.Principal()
	p.ContextClientID = &clientID
	return p
}

func TokenManager() *auth.Manager {
	return auth.NewManager(JWTSecret, time.Hour)
}

func Token(t *testing.T, u model.User) string {
	t.Helper()
	token, err := TokenManager().Issue(u)
	require.NoError(t, err)
	return token.Value
}

// Clock is a settable time source for services under test.
type Clock struct {
	Current time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{Current: t.UTC()}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

type Envelope struct {
	Success    bool              `json:"success"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Pagination *model.Pagination `json:"pagination"`
	Errors     []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Details map[string]interface{} `json:"details"`
}

func DoRequest(t *testing.T, handler http.Handler, method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reader).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func ParseResponse(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// DecodeData unmarshals the envelope's data into out.
func DecodeData(t *testing.T, env Envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}
