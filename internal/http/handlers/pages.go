package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/metrics"
	"github.com/hongminglow/santuario-be/internal/middleware"
	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/service"
	"github.com/hongminglow/santuario-be/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const localeCookieMaxAge = 365 * 24 * time.Hour

var pageNames = []string{"login", "register", "dashboard", "creatures"}

// roleAreas are the guarded page trees, one per role.
var roleAreas = []string{"/maestro", "/cuidador"}

type pageData struct {
	Locale    string
	T         map[string]string
	User      *models.User
	Home      string
	Error     string
	Notice    string
	Form      map[string]string
	Creatures []models.Creature
	Species   []string
	Filter    string
}

// PageHandler renders the server-side pages and handles their form posts.
type PageHandler struct {
	accounts  *service.Accounts
	creatures *service.Creatures
	session   SessionOptions
	metrics   *metrics.Metrics
	pages     map[string]*template.Template
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(accounts *service.Accounts, creatures *service.Creatures, session SessionOptions, m *metrics.Metrics) (*PageHandler, error) {
	funcs := template.FuncMap{"join": strings.Join}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=zero").ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &PageHandler{accounts: accounts, creatures: creatures, session: session, metrics: m, pages: pages}, nil
}

// Register attaches page routes to the mux.
func (h *PageHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /auth/login", h.handleLoginPage)
	mux.HandleFunc("POST /auth/login", h.handleLoginForm)
	mux.HandleFunc("GET /auth/register", h.handleRegisterPage)
	mux.HandleFunc("POST /auth/register", h.handleRegisterForm)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	mux.HandleFunc("GET /locale/{lang}", h.handleLocale)
	for _, area := range roleAreas {
		mux.HandleFunc("GET "+area, h.handleDashboard)
		mux.HandleFunc("POST "+area+"/perfil", h.handleProfileForm)
		mux.HandleFunc("GET "+area+"/misCriaturas", h.handleCreatures)
		mux.HandleFunc("POST "+area+"/misCriaturas", h.handleCreateCreature)
		mux.HandleFunc("POST "+area+"/misCriaturas/{id}/delete", h.handleDeleteCreature)
	}
}

func (h *PageHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	http.Redirect(w, r, models.HomePath(identity.Role), http.StatusSeeOther)
}

func (h *PageHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if identity, ok := auth.FromContext(r.Context()); ok {
		http.Redirect(w, r, models.HomePath(identity.Role), http.StatusSeeOther)
		return
	}
	data := h.data(r)
	if r.URL.Query().Get("registered") != "" {
		data.Notice = data.T["register.done"]
	}
	h.render(w, r, http.StatusOK, "login", data)
}

func (h *PageHandler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, "login", nil, &service.ValidationError{Message: "formulario inválido"})
		return
	}
	email := r.PostForm.Get("email")
	user, token, err := h.accounts.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		recordLoginFailure(h.metrics, err)
		h.renderError(w, r, "login", map[string]string{"email": email}, err)
		return
	}
	h.metrics.RecordLogin(metrics.LoginSuccess)
	http.SetCookie(w, auth.SessionCookie(token, h.session.TTL, h.session.Secure))
	http.Redirect(w, r, models.HomePath(user.Role), http.StatusSeeOther)
}

func (h *PageHandler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", h.data(r))
}

func (h *PageHandler) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, "register", nil, &service.ValidationError{Message: "formulario inválido"})
		return
	}
	form := map[string]string{
		"name":  r.PostForm.Get("name"),
		"email": r.PostForm.Get("email"),
		"role":  r.PostForm.Get("role"),
	}
	created, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     form["name"],
		Email:    form["email"],
		Password: r.PostForm.Get("password"),
		Role:     form["role"],
	})
	if err != nil {
		h.renderError(w, r, "register", form, err)
		return
	}
	h.metrics.RecordRegistration(created.Role)
	http.Redirect(w, r, "/auth/login?registered=1", http.StatusSeeOther)
}

func (h *PageHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie(h.session.Secure))
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *PageHandler) handleLocale(w http.ResponseWriter, r *http.Request) {
	locale := middleware.MatchLocale(r.PathValue("lang"))
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.LocaleCookieName,
		Value:    locale,
		Path:     "/",
		MaxAge:   int(localeCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, sameSiteReferer(r), http.StatusSeeOther)
}

func (h *PageHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	data := h.data(r)
	data.User = &user
	if r.URL.Query().Get("updated") != "" {
		data.Notice = data.T["profile.updated"]
	}
	h.render(w, r, http.StatusOK, "dashboard", data)
}

func (h *PageHandler) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	data := h.data(r)
	data.User = &user
	if err := r.ParseForm(); err != nil {
		data.Error = "formulario inválido"
		h.render(w, r, http.StatusBadRequest, "dashboard", data)
		return
	}
	form := map[string]string{
		"name":        r.PostForm.Get("name"),
		"email":       r.PostForm.Get("email"),
		"description": r.PostForm.Get("description"),
	}
	if _, err := h.accounts.UpdateProfile(r.Context(), user.ID, form["name"], form["email"], form["description"]); err != nil {
		status, message := h.statusFor(r, err)
		data.Error = message
		data.Form = form
		h.render(w, r, status, "dashboard", data)
		return
	}
	http.Redirect(w, r, models.HomePath(user.Role)+"?updated=1", http.StatusSeeOther)
}

func (h *PageHandler) handleCreatures(w http.ResponseWriter, r *http.Request) {
	h.renderCreatures(w, r, http.StatusOK, "")
}

func (h *PageHandler) handleCreateCreature(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderCreatures(w, r, http.StatusBadRequest, "formulario inválido")
		return
	}
	in := service.CreatureInput{
		Name:    r.PostForm.Get("nombre"),
		Species: r.PostForm.Get("especie"),
		Trained: r.PostForm.Get("entrenada") == "true" || r.PostForm.Get("entrenada") == "on",
		Skills:  strings.Split(r.PostForm.Get("habilidades"), ","),
	}
	if raw := strings.TrimSpace(r.PostForm.Get("nivel_magico")); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			h.renderCreatures(w, r, http.StatusBadRequest, "nivel_magico debe ser un número")
			return
		}
		in.MagicLevel = level
	}
	if _, err := h.creatures.Create(r.Context(), identity.UserID, in); err != nil {
		status, message := h.statusFor(r, err)
		h.renderCreatures(w, r, status, message)
		return
	}
	http.Redirect(w, r, models.HomePath(identity.Role)+"/misCriaturas", http.StatusSeeOther)
}

func (h *PageHandler) handleDeleteCreature(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err == nil {
		err = h.creatures.Delete(r.Context(), identity.UserID, id)
	}
	if err != nil {
		status, message := h.statusFor(r, err)
		h.renderCreatures(w, r, status, message)
		return
	}
	http.Redirect(w, r, models.HomePath(identity.Role)+"/misCriaturas", http.StatusSeeOther)
}

func (h *PageHandler) renderCreatures(w http.ResponseWriter, r *http.Request, status int, message string) {
	user, ok := h.sessionUser(w, r)
	if !ok {
		return
	}
	list, err := h.creatures.List(r.Context(), user.ID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list creatures failed")
		status, message = http.StatusInternalServerError, msgServerError
	}
	data := h.data(r)
	data.User = &user
	data.Error = message
	data.Creatures = list
	data.Species = models.Species
	if species := r.URL.Query().Get("especie"); models.IsKnownSpecies(species) {
		data.Filter = species
		data.Creatures = filterSpecies(list, species)
	}
	h.render(w, r, status, "creatures", data)
}

func filterSpecies(list []models.Creature, species string) []models.Creature {
	out := make([]models.Creature, 0, len(list))
	for _, c := range list {
		if c.Species == species {
			out = append(out, c)
		}
	}
	return out
}

// sessionUser loads the profile behind the session. A session for a user that no
// longer exists is cleared and sent back to login.
func (h *PageHandler) sessionUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return models.User{}, false
	}
	user, err := h.accounts.Profile(r.Context(), identity.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.SetCookie(w, auth.ExpiredSessionCookie(h.session.Secure))
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return models.User{}, false
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load profile failed")
		http.Error(w, msgServerError, http.StatusInternalServerError)
		return models.User{}, false
	}
	return user, true
}

func (h *PageHandler) statusFor(r *http.Request, err error) (int, string) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("page action failed")
	}
	return status, message
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, page string, form map[string]string, err error) {
	status, message := h.statusFor(r, err)
	data := h.data(r)
	data.Error = message
	data.Form = form
	h.render(w, r, status, page, data)
}

func (h *PageHandler) data(r *http.Request) pageData {
	locale := middleware.LocaleFromContext(r.Context())
	data := pageData{Locale: locale, T: messagesFor(locale)}
	if identity, ok := auth.FromContext(r.Context()); ok {
		data.Home = models.HomePath(identity.Role)
	}
	return data
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render page failed")
		http.Error(w, msgServerError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// sameSiteReferer returns the path of the Referer so the locale switch lands back
// on the same page without becoming an open redirect.
func sameSiteReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
