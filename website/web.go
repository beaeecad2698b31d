package website

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/fasorail/recharges/utils"

	"github.com/gbl08ma/keybox"
	"github.com/gbl08ma/sqalx"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var webtemplate *template.Template
var templateFS fs.FS
var sessionStore *sessions.CookieStore
var websiteURL string
var feedToken string
var webLog *log.Logger
var rootSqalxNode sqalx.Node
var statsHandler *compute.StatsHandler
var csrfMiddleware mux.MiddlewareFunc

// PageCommons contains information that is required by most page templates
type PageCommons struct {
	CSRFfield  template.HTML
	PageTitle  string
	DebugBuild bool
	User       *types.User
}

// ConfigureRouter configures a router to handle website paths
func ConfigureRouter(router *mux.Router) {
	router.HandleFunc("/", HomePage)
	router.HandleFunc("/login", LoginPage)
	router.HandleFunc("/logout", LogoutHandler)
	router.HandleFunc("/recharges", RechargesPage)
	router.HandleFunc("/reports", ReportsPage)
	router.HandleFunc("/reports/{kind:zone|agency|gare}/{id}", ReportPage)
	router.HandleFunc("/reports/{kind:zone|agency|gare}/{id}/csv", ReportCSV)
	router.HandleFunc("/reports/{kind:zone|agency|gare}/{id}/whatsapp", ReportWhatsApp).Methods(http.MethodPost)
	router.HandleFunc("/alerts", AlertsPage)
	router.HandleFunc("/alerts/{id}/dismiss", DismissAlert).Methods(http.MethodPost)
	router.HandleFunc("/feed", RSSFeed)

	if DEBUG {
		router.HandleFunc("/debug/pprof/", pprof.Index)
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)

		router.Use(templateReloadingMiddleware)
	}
	router.Use(csrfMiddleware)
}

// Initialize initializes the package
func Initialize(snode sqalx.Node, webKeybox *keybox.Keybox, log *log.Logger, sh *compute.StatsHandler) {
	webLog = log
	rootSqalxNode = snode
	statsHandler = sh

	authKey, present := webKeybox.Get("cookieAuthKey")
	cipherKey, present2 := webKeybox.Get("cookieCipherKey")
	if !present || !present2 {
		webLog.Fatal("Cookie auth/cipher keys not present in web keybox")
	}

	websiteURL, present = webKeybox.Get("websiteURL")
	if !present {
		webLog.Fatal("Website URL not present in web keybox")
	}
	websiteURL = strings.TrimSuffix(websiteURL, "/")

	feedToken, present = webKeybox.Get("feedToken")
	if !present {
		webLog.Println("Feed token not present in web keybox, RSS feed disabled")
	}

	csrfAuthKey, present := webKeybox.Get("csrfAuthKey")
	if !present {
		webLog.Fatal("CSRF auth key not present in web keybox")
	}

	csrfOpts := []csrf.Option{csrf.FieldName(CSRFfieldName), csrf.CookieName(CSRFcookieName)}
	if DEBUG {
		csrfOpts = append(csrfOpts, csrf.Secure(false))
	}
	csrfMiddleware = csrf.Protect([]byte(csrfAuthKey), csrfOpts...)

	sessionStore = sessions.NewCookieStore(
		[]byte(authKey),
		[]byte(cipherKey))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.MaxAge = int(sessionLifetime.Seconds())

	templateFS, _ = fs.Sub(embeddedTemplates, "templates")
	if DEBUG {
		if _, err := os.Stat("website/templates"); err == nil {
			templateFS = os.DirFS("website/templates")
		}
	}
	ReloadTemplates()
}

// BaseURL returns the base URL of the website without trailing slash
func BaseURL() string {
	return websiteURL
}

func templateReloadingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ReloadTemplates()
		next.ServeHTTP(w, r)
	})
}

// InitPageCommons fills PageCommons with the info that is required by most page templates
func InitPageCommons(r *http.Request, user *types.User, title string) PageCommons {
	return PageCommons{
		CSRFfield:  csrf.TemplateField(r),
		PageTitle:  title + " | Suivi des recharges",
		DebugBuild: DEBUG,
		User:       user,
	}
}

// ReloadTemplates reloads the templates for the website
func ReloadTemplates() {
	funcMap := template.FuncMap{
		"formatFrenchMonth":    utils.FormatFrenchMonth,
		"formatFrenchDate":     utils.FormatFrenchDate,
		"formatFrenchDateTime": utils.FormatFrenchDateTime,
		"formatAmount":         compute.FormatAmount,
		"paymentTypeLabel":     compute.PaymentTypeLabel,
		"remainingLabel": func(end time.Time) string {
			return compute.RemainingLabel(end, time.Now())
		},
		"monthDate": func(m compute.MonthlyStats) time.Time {
			return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
		},
		"join": strings.Join,
	}

	if templateFS == nil {
		templateFS, _ = fs.Sub(embeddedTemplates, "templates")
	}
	webtemplate = template.Must(template.New("index.html").Funcs(funcMap).ParseFS(templateFS, "*.html"))
}

// render executes the named template, logging failures
func render(w http.ResponseWriter, name string, data interface{}) {
	err := webtemplate.ExecuteTemplate(w, name, data)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}
