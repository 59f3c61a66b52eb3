package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/metrics"
	"github.com/hongminglow/santuario-be/internal/middleware"
	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/service"
	"github.com/hongminglow/santuario-be/internal/storage"
	"github.com/hongminglow/santuario-be/internal/storage/memory"
)

type fixture struct {
	handler  http.Handler
	accounts *service.Accounts
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager("handler-secret", "santuario", 30*24*time.Hour)
	accounts, err := service.NewAccounts(store, auth.NewHasherWithCost(bcrypt.MinCost), tokens)
	require.NoError(t, err)
	creatures := service.NewCreatures(store)
	m := metrics.New()
	session := SessionOptions{TTL: tokens.TTL()}

	mux := http.NewServeMux()
	NewAuthHandler(accounts, session, m).Register(mux, middleware.RequireAuth)
	NewCreatureHandler(creatures).Register(mux, middleware.RequireAuth)
	pages, err := NewPageHandler(accounts, creatures, session, m)
	require.NoError(t, err)
	pages.Register(mux)

	gate := middleware.NewGate(tokens, 24*time.Hour, false)
	return fixture{
		handler:  middleware.Locale(gate.Authenticate(middleware.Guard(mux))),
		accounts: accounts,
		tokens:   tokens,
		metrics:  m,
	}
}

func (f fixture) user(t *testing.T, name, email, role string) (models.User, string) {
	t.Helper()
	u, err := f.accounts.Register(t.Context(), service.RegisterInput{Name: name, Email: email, Password: "secret", Role: role})
	require.NoError(t, err)
	token, err := f.tokens.Generate(u)
	require.NoError(t, err)
	return u, token
}

func (f fixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Message: "nombre is required"}, http.StatusBadRequest},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found wrapped by oops", oops.Code("X").Wrap(storage.ErrNotFound), http.StatusNotFound},
		{"duplicate wrapped", fmt.Errorf("insert: %w", storage.ErrAlreadyExists), http.StatusConflict},
		{"driver error", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotContains(t, message, "pq:")
		})
	}
}

func TestRegister_Statuses(t *testing.T) {
	f := newFixture(t)
	payload := map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret", "role": "Cuidador"}

	rec, body := f.do(t, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["ok"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "cuidador", user["role"])
	assert.Equal(t, models.DefaultDescriptionCuidador, user["description"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "PasswordHash")

	rec, body = f.do(t, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgEmailTaken, body["error"])

	rec, _ = f.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	f.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user(t, "Leo", "leo@x.com", models.RoleMaestro)

	rec, body := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "LEO@x.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	session := body["user"].(map[string]any)
	assert.Equal(t, float64(u.ID), session["id"])
	assert.Equal(t, "maestro", session["role"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, body["token"], cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	u, token := f.user(t, "Leo", "leo@x.com", models.RoleMaestro)

	rec, body := f.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultDescriptionMaestro, body["description"])

	rec, _ = f.do(t, http.MethodGet, fmt.Sprintf("/api/auth/profile?userId=%d", u.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/auth/profile?userId=999", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ana, token := f.user(t, "Ana", "ana@x.com", models.RoleCuidador)
	f.user(t, "Leo", "leo@x.com", models.RoleMaestro)

	rec, body := f.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"userId": ana.ID, "name": "Ana María", "email": "ana@x.com", "description": "Cuido grifos",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Perfil actualizado correctamente", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ana María", user["name"])
	assert.Equal(t, "cuidador", user["role"])

	// omitted description keeps the saved one
	rec, body = f.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"name": "Ana", "email": "ana@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cuido grifos", body["user"].(map[string]any)["description"])

	// a cleared description answers with the role placeholder
	rec, body = f.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"name": "Ana", "email": "ana@x.com", "description": "",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultDescriptionCuidador, body["user"].(map[string]any)["description"])

	rec, _ = f.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"name": "Ana", "email": "leo@x.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/api/auth/update-profile", token, map[string]any{
		"userId": "999", "name": "Ana", "email": "ana@x.com",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatures_CRUD(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "Ana", "ana@x.com", models.RoleCuidador)

	rec, body := f.do(t, http.MethodPost, "/api/creatures/new", token, map[string]any{
		"nombre": "Nube", "especie": "Grifo", "habilidades": []string{"volar", "planear"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := body["creature"].(map[string]any)
	assert.Equal(t, float64(1), created["nivel_magico"])
	assert.Equal(t, false, created["entrenada"])
	path := fmt.Sprintf("/api/creatures/%v", created["id"])

	rec, body = f.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"volar", "planear"}, body["creature"].(map[string]any)["habilidades"])

	rec, body = f.do(t, http.MethodPut, path, token, map[string]any{
		"nombre": "Nube", "especie": "Grifo", "nivel_magico": 42, "entrenada": true, "habilidades": []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := body["creature"].(map[string]any)
	assert.Equal(t, float64(42), updated["nivel_magico"])
	assert.Equal(t, true, updated["entrenada"])
	assert.Equal(t, []any{}, updated["habilidades"])

	rec, _ = f.do(t, http.MethodPut, path, token, map[string]any{"nombre": "Nube", "especie": "Hidra"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/creatures/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/creatures/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Criatura eliminada exitosamente", body["message"])
}

func TestCreatures_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "Ana", "ana@x.com", models.RoleCuidador)
	for _, name := range []string{"Uno", "Dos", "Tres"} {
		rec, _ := f.do(t, http.MethodPost, "/api/creatures/new", token, map[string]any{"nombre": name, "especie": "Golem"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, body := f.do(t, http.MethodGet, "/api/creatures", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["creatures"].([]any)
	require.Len(t, list, 3)
	assert.Equal(t, "Tres", list[0].(map[string]any)["nombre"])
	assert.Equal(t, "Uno", list[2].(map[string]any)["nombre"])
}

func TestLocaleSwitch(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/locale/en", nil)
	req.Header.Set("Referer", "http://example.com/auth/register?x=1")
	rec := httptest.NewRecorder()

	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/register?x=1", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.LocaleCookieName, cookies[0].Name)
	assert.Equal(t, "en", cookies[0].Value)
	assert.Equal(t, 365*24*3600, cookies[0].MaxAge)
}

func TestSameSiteReferer(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"http://example.com/maestro", "/maestro"},
		{"https://evil.app/phish", "/"},
		{"/cuidador/misCriaturas", "/cuidador/misCriaturas"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/locale/es", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		assert.Equal(t, tt.want, sameSiteReferer(req), tt.referer)
	}
}

func TestRecordLoginFailure(t *testing.T) {
	m := metrics.New()

	recordLoginFailure(m, service.ErrInvalidCredentials)
	recordLoginFailure(m, &service.ValidationError{Message: "email and password are required"})
	recordLoginFailure(m, errors.New("pq: connection reset"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(metrics.LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues(metrics.LoginError)))
}

func TestPages_LoginFormCountsOutcomes(t *testing.T) {
	f := newFixture(t)
	f.user(t, "Ana", "ana@x.com", models.RoleCuidador)

	post := func(form string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, post("email=ana%40x.com&password=wrong").Code)
	assert.Equal(t, http.StatusBadRequest, post("email=ana%40x.com").Code)
	rec := post("email=ana%40x.com&password=secret")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cuidador", rec.Header().Get("Location"))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.LoginAttempts.WithLabelValues(metrics.LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.LoginAttempts.WithLabelValues(metrics.LoginError)))
}

func TestPages_ProfileForm(t *testing.T) {
	f := newFixture(t)
	ana, token := f.user(t, "Ana", "ana@x.com", models.RoleCuidador)
	f.user(t, "Leo", "leo@x.com", models.RoleMaestro)

	send := func(method, path, form string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodGet, "/cuidador", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/cuidador/perfil"`)
	assert.Contains(t, rec.Body.String(), `value="ana@x.com"`)

	rec = send(http.MethodPost, "/cuidador/perfil", "name=Ana+Mar%C3%ADa&email=ana%40x.com&description=Cuido+grifos")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cuidador?updated=1", rec.Header().Get("Location"))

	saved, err := f.accounts.Profile(t.Context(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", saved.Name)
	assert.Equal(t, "Cuido grifos", saved.Description)
	assert.Equal(t, models.RoleCuidador, saved.Role)

	rec = send(http.MethodGet, "/cuidador?updated=1", "")
	assert.Contains(t, rec.Body.String(), "Perfil actualizado correctamente")

	rec = send(http.MethodPost, "/cuidador/perfil", "name=Ana&email=leo%40x.com&description=")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="leo@x.com"`)

	rec = send(http.MethodPost, "/cuidador/perfil", "name=&email=ana%40x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	saved, err = f.accounts.Profile(t.Context(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", saved.Email)
}

func TestPages_CreaturesSpeciesFilter(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "Leo", "leo@x.com", models.RoleMaestro)
	for _, c := range []map[string]any{
		{"nombre": "Draco", "especie": "Dragón", "nivel_magico": 5},
		{"nombre": "Pyra", "especie": "Fénix", "nivel_magico": 3},
	} {
		rec, _ := f.do(t, http.MethodPost, "/api/creatures/new", token, c)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	get := func(path string) string {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	page := get("/maestro/misCriaturas?especie=F%C3%A9nix")
	assert.Contains(t, page, "<td>Pyra</td>")
	assert.NotContains(t, page, "<td>Draco</td>")
	assert.Contains(t, page, `<option value="Fénix" selected>`)

	page = get("/maestro/misCriaturas?especie=Unicornio")
	assert.Contains(t, page, "<td>Pyra</td>")
	assert.Contains(t, page, "<td>Draco</td>")

	page = get("/maestro/misCriaturas")
	assert.Contains(t, page, "<td>Pyra</td>")
	assert.Contains(t, page, "<td>Draco</td>")
}

func TestPages_RegisterFormShowsConflict(t *testing.T) {
	f := newFixture(t)
	f.user(t, "Ana", "ana@x.com", models.RoleCuidador)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("name=Eve&email=ana%40x.com&password=p&role=maestro"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.LocaleCookieName, Value: "en"})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create your account")
	assert.Contains(t, rec.Body.String(), `value="Eve"`)
}

func TestPages_CreateAndDeleteCreature(t *testing.T) {
	f := newFixture(t)
	_, token := f.user(t, "Ana", "ana@x.com", models.RoleCuidador)

	post := func(path, form string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/cuidador/misCriaturas", "nombre=Draco&especie=Drag%C3%B3n&nivel_magico=5&entrenada=on&habilidades=fly%2C+roar")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cuidador/misCriaturas", rec.Header().Get("Location"))

	rec, body := f.do(t, http.MethodGet, "/api/creatures", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["creatures"].([]any)
	require.Len(t, list, 1)
	draco := list[0].(map[string]any)
	assert.Equal(t, []any{"fly", "roar"}, draco["habilidades"])
	assert.Equal(t, true, draco["entrenada"])

	rec = post("/cuidador/misCriaturas", "nombre=X&especie=Golem&nivel_magico=mucho")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(fmt.Sprintf("/cuidador/misCriaturas/%v/delete", draco["id"]), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, body = f.do(t, http.MethodGet, "/api/creatures", token, nil)
	assert.Empty(t, body["creatures"])
}
