package website

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/fasorail/recharges/utils"
	"github.com/gbl08ma/sqalx"
)

const sessionLifetime = 7 * 24 * time.Hour

// currentUser returns the signed in user of the request. When there is none
// and doLogin is true, the client is redirected to the login page and
// nil is returned.
func currentUser(node sqalx.Node, w http.ResponseWriter, r *http.Request, doLogin bool) (*types.User, error) {
	session, _ := sessionStore.Get(r, SessionName)
	authenticated, _ := session.Values["authenticated"].(int64)
	userID, _ := session.Values["userid"].(string)
	if session.IsNew || userID == "" || authenticated < time.Now().Add(-sessionLifetime).Unix() {
		if doLogin {
			redirectToLogin(w, r)
		}
		return nil, nil
	}

	user, err := types.GetUser(node, userID)
	if err != nil {
		// the account is gone
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			return nil, err
		}
		if doLogin {
			redirectToLogin(w, r)
		}
		return nil, nil
	}
	return user, nil
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}

// safeRedirectTarget returns next when it is a local path, "/" otherwise
func safeRedirectTarget(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// LoginPage serves the login page and handles sign in attempts
func LoginPage(w http.ResponseWriter, r *http.Request) {
	p := struct {
		PageCommons
		Email   string
		Next    string
		Message string
	}{
		PageCommons: InitPageCommons(r, nil, "Connexion"),
		Next:        safeRedirectTarget(r.URL.Query().Get("next")),
	}

	if r.Method != http.MethodPost {
		render(w, "login.html", p)
		return
	}

	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	p.Email = strings.TrimSpace(r.Form.Get("email"))
	p.Next = safeRedirectTarget(r.Form.Get("next"))

	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	user, err := types.GetUserByEmail(tx, p.Email)
	if err != nil || !user.CheckPassword(r.Form.Get("password")) {
		webLog.Println("Failed website login for", p.Email, "from", utils.GetClientIP(r))
		p.Message = "Email ou mot de passe incorrect"
		w.WriteHeader(http.StatusUnauthorized)
		render(w, "login.html", p)
		return
	}

	session, _ := sessionStore.Get(r, SessionName)
	session.Values["userid"] = user.ID
	session.Values["authenticated"] = time.Now().Unix()
	session.Options.Secure = !DEBUG && utils.RequestIsTLS(r)
	err = session.Save(r, w)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, p.Next, http.StatusFound)
}

// LogoutHandler signs the user out
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionStore.Get(r, SessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	err := session.Save(r, w)
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
