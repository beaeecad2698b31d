package resource

import (
	"net/http"
	"strings"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/yarf-framework/yarf"
)

// Auth composites resource
type Auth struct {
	resource
	loginTelemetry chan bool
}

type apiUser struct {
	ID               string     `msgpack:"id" json:"id"`
	Email            string     `msgpack:"email" json:"email"`
	FullName         string     `msgpack:"full_name" json:"full_name"`
	Role             types.Role `msgpack:"role" json:"role"`
	AssignedZones    []string   `msgpack:"assigned_zones" json:"assigned_zones"`
	AssignedAgencies []string   `msgpack:"assigned_agencies" json:"assigned_agencies"`
	AssignedGares    []string   `msgpack:"assigned_gares" json:"assigned_gares"`
	CreatedAt        time.Time  `msgpack:"created_at" json:"created_at"`
}

type apiRegisterRequest struct {
	Email            string     `msgpack:"email" json:"email"`
	Password         string     `msgpack:"password" json:"password"`
	FullName         string     `msgpack:"full_name" json:"full_name"`
	Role             types.Role `msgpack:"role" json:"role"`
	AssignedZones    []string   `msgpack:"assigned_zones" json:"assigned_zones"`
	AssignedAgencies []string   `msgpack:"assigned_agencies" json:"assigned_agencies"`
	AssignedGares    []string   `msgpack:"assigned_gares" json:"assigned_gares"`
}

type apiLoginRequest struct {
	Email    string `msgpack:"email" json:"email"`
	Password string `msgpack:"password" json:"password"`
}

type apiLoginResponse struct {
	Token     string  `msgpack:"token" json:"token"`
	TokenType string  `msgpack:"token_type" json:"token_type"`
	User      apiUser `msgpack:"user" json:"user"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Auth) WithDependencies(deps Dependencies) *Auth {
	r.with(deps)
	return r
}

// WithTelemetryChannel associates a channel that receives the outcome of each login attempt
func (r *Auth) WithTelemetryChannel(c chan bool) *Auth {
	r.loginTelemetry = c
	return r
}

func (r *Auth) sendTelemetry(success bool) {
	if r.loginTelemetry == nil {
		return
	}
	select {
	case r.loginTelemetry <- success:
	default:
	}
}

func newAPIUser(user *types.User) apiUser {
	return apiUser{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Role:             user.Role,
		AssignedZones:    nonNil(user.AssignedZones),
		AssignedAgencies: nonNil(user.AssignedAgencies),
		AssignedGares:    nonNil(user.AssignedGares),
		CreatedAt:        user.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Get serves HTTP GET requests on this resource
func (r *Auth) Get(c *yarf.Context) error {
	if c.Param("action") != "me" {
		return notFound("Action")
	}
	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Commit() // read-only tx

	session, err := r.authenticate(c, tx)
	if err != nil {
		return err
	}
	RenderData(c, newAPIUser(session.User), noCache)
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Auth) Post(c *yarf.Context) error {
	switch c.Param("action") {
	case "register":
		return r.register(c)
	case "login":
		return r.login(c)
	case "logout":
		r.sessions.Delete(BearerToken(c.Request))
		RenderData(c, apiMessage{"Logged out"}, noCache)
		return nil
	}
	return notFound("Action")
}

func (r *Auth) register(c *yarf.Context) error {
	var request apiRegisterRequest
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := types.CountUsers(tx)
	if err != nil {
		return err
	}
	if count == 0 {
		// the first user bootstraps the system
		request.Role = types.RoleSuperAdmin
	} else {
		session, err := r.authenticate(c, tx)
		if err != nil {
			return err
		}
		if session.User.Role != types.RoleSuperAdmin {
			return forbidden("Only Super Admin can register users")
		}
	}

	if request.Role == "" {
		request.Role = types.RoleFieldAgent
	}
	if !request.Role.Valid() {
		return badRequest("Invalid role")
	}
	request.Email = strings.TrimSpace(request.Email)
	if request.Email == "" || request.Password == "" {
		return badRequest("Email and password are required")
	}
	if _, err := types.GetUserByEmail(tx, request.Email); err == nil {
		return badRequest("Email already registered")
	}

	user, err := types.NewUser(request.Email, request.FullName, request.Password, request.Role, time.Now())
	if err != nil {
		return err
	}
	user.AssignedZones = request.AssignedZones
	user.AssignedAgencies = request.AssignedAgencies
	user.AssignedGares = request.AssignedGares
	err = user.Update(tx)
	if err != nil {
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}

	renderCreated(c, newAPIUser(user))
	return nil
}

func (r *Auth) login(c *yarf.Context) error {
	var request apiLoginRequest
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	tx, err := r.Beginx()
	if err != nil {
		return err
	}
	defer tx.Commit() // read-only tx

	user, err := types.GetUserByEmail(tx, request.Email)
	if err != nil || !user.CheckPassword(request.Password) {
		r.sendTelemetry(false)
		return &yarf.CustomError{
			HTTPCode:  http.StatusUnauthorized,
			ErrorMsg:  "Invalid credentials",
			ErrorBody: "Invalid credentials",
		}
	}
	r.sendTelemetry(true)

	session := r.sessions.Create(user)
	RenderData(c, apiLoginResponse{
		Token:     session.Token,
		TokenType: "bearer",
		User:      newAPIUser(user),
	}, noCache)
	return nil
}
