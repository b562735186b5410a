package misc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=misc_test

type accountService interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Handler struct {
	tipsManager    *TipsManager
	versionInfo    string
	accounts       accountService
	metricsManager *metrics.Manager
}

func NewHandler(
	tipsManager *TipsManager,
	versionInfo string,
	accounts accountService,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		tipsManager:    tipsManager,
		versionInfo:    versionInfo,
		accounts:       accounts,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/tips/random", handler.handleGetRandomTip).Methods("GET").Name("tip")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	accountSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	accountSubrouter.
		HandleFunc("/register", handler.handleRegister).
		Methods("POST", "OPTIONS").Name("register")
	accountSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	accountSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	accountSubrouter.
		HandleFunc("/whoami", handler.handleWhoAmI).
		Methods("GET", "OPTIONS").Name("whoami")

	// credentials guessing and sign-up spam
	accountSubrouter.Use(middleware.RateLimit(rateLimiter, "account", allowedPerMin, handler.metricsManager))
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or a form.
func readCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if r.Header.Get("Content-Type") == pkg.ContentType.JSON {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return creds, err
		}
		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return creds, err
	}
	creds.Email = r.Form.Get("email")
	creds.Password = r.Form.Get("password")
	return creds, nil
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetRandomTip(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.tip")
	defer span.End()

	category := r.URL.Query().Get("category")
	tip, err := handler.tipsManager.RandomTip(category)
	if err != nil {
		http.Error(w, "no tips for category", http.StatusNotFound)
		return
	}

	tipBytes, err := json.Marshal(tip)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		log.Errorf("marshal tip error: %s", err)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, tipBytes)
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	creds, err := readCredentials(r)
	if err != nil {
		log.Debugf("register, read credentials: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		http.Error(w, "error, email or password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.accounts.Register(ctx, creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, "error, user already registered", http.StatusConflict)
		default:
			log.Errorf("register failed: %s", err)
			http.Error(w, "register failed", http.StatusInternalServerError)
		}
		return
	}

	handler.metricsManager.CounterRegistrations.Inc()
	span.SetAttributes(attribute.String("user", user.ID.String()))

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal registered user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	creds, err := readCredentials(r)
	if err != nil {
		log.Debugf("login, read credentials: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}
	if creds.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if creds.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	session, err := handler.accounts.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWrongCredentials) {
			handler.metricsManager.CounterLogins.WithLabelValues("wrong-credentials").Inc()
			log.Tracef("failed login attempt for: %s", creds.Email)
			http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
			return
		}
		handler.metricsManager.CounterLogins.WithLabelValues("error").Inc()
		log.Errorf("login failed: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues("success").Inc()

	respJson, err := json.Marshal(map[string]string{
		"token":  session.Token,
		"userId": session.UserID.String(),
	})
	if err != nil {
		log.Errorf("marshal login response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get(middleware.AuthTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.accounts.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Debugf("logout for user %s", userIDOrUnknown(ctx))
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	respJson, err := json.Marshal(map[string]any{
		"userId":    session.UserID,
		"createdAt": session.CreatedAt,
	})
	if err != nil {
		log.Errorf("marshal whoami response: %s", err)
		http.Error(w, "whoami failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func userIDOrUnknown(ctx context.Context) string {
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		return userID.String()
	}
	return "unknown"
}
