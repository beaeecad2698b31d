package resource

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/gbl08ma/sqalx"
	"github.com/yarf-framework/yarf"
	msgpack "gopkg.in/vmihailenco/msgpack.v2"
)

// Dependencies holds what resources need to serve requests
type Dependencies struct {
	Node     sqalx.Node
	Sessions *SessionStore
	Stats    *compute.StatsHandler
}

type resource struct {
	yarf.Resource
	node     sqalx.Node
	sessions *SessionStore
	stats    *compute.StatsHandler
}

func (r *resource) with(deps Dependencies) {
	r.node = deps.Node
	r.sessions = deps.Sessions
	r.stats = deps.Stats
}

// Beginx is shorthand for resource.node.Beginx()
func (r *resource) Beginx() (sqalx.Node, error) {
	return r.node.Beginx()
}

// DecodeRequest decodes the msgpack or JSON body of the request into v
func (r *resource) DecodeRequest(c *yarf.Context, v interface{}) error {
	contentType := c.Request.Header.Get("Content-Type")
	var err error
	switch {
	case strings.Contains(contentType, "msgpack"):
		err = msgpack.NewDecoder(c.Request.Body).Decode(v)
	default:
		err = json.NewDecoder(c.Request.Body).Decode(v)
	}

	if err != nil {
		return &yarf.CustomError{
			HTTPCode:  http.StatusBadRequest,
			ErrorMsg:  "Failed to decode request",
			ErrorBody: err.Error(),
		}
	}
	return nil
}

// authenticate returns the session of the bearer token of the request,
// with its user freshly loaded so that role changes apply immediately
func (r *resource) authenticate(c *yarf.Context, node sqalx.Node) (*Session, error) {
	session, ok := r.sessions.Get(BearerToken(c.Request))
	if !ok {
		return nil, errUnauthorized
	}
	user, err := types.GetUser(node, session.UserID)
	if err != nil {
		r.sessions.Delete(session.Token)
		return nil, errUnauthorized
	}
	session.User = user
	return session, nil
}

// visibility returns the snapshot to serve the request from and what the
// user of the session can see in it
func (r *resource) visibility(node sqalx.Node, session *Session) (*compute.Snapshot, compute.Visibility, error) {
	s, err := r.stats.Snapshot(node)
	if err != nil {
		return nil, compute.Visibility{}, err
	}
	return s, compute.VisibilityFor(session.User, s), nil
}

var errUnauthorized = &yarf.CustomError{
	HTTPCode:  http.StatusUnauthorized,
	ErrorMsg:  "Invalid authentication credentials",
	ErrorBody: "Invalid authentication credentials",
}

func forbidden(msg string) error {
	return &yarf.CustomError{
		HTTPCode:  http.StatusForbidden,
		ErrorMsg:  msg,
		ErrorBody: msg,
	}
}

func badRequest(msg string) error {
	return &yarf.CustomError{
		HTTPCode:  http.StatusBadRequest,
		ErrorMsg:  msg,
		ErrorBody: msg,
	}
}

func notFound(entity string) error {
	msg := entity + " not found"
	return &yarf.CustomError{
		HTTPCode:  http.StatusNotFound,
		ErrorMsg:  msg,
		ErrorBody: msg,
	}
}

// apiError maps errors from the types and compute packages to API errors
func apiError(err error) error {
	var customErr *yarf.CustomError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &customErr):
		return err
	case errors.Is(err, types.ErrDuplicateLineNumber):
		return badRequest(types.ErrDuplicateLineNumber.Error())
	case errors.Is(err, types.ErrNotFound):
		return &yarf.CustomError{
			HTTPCode:  http.StatusNotFound,
			ErrorMsg:  err.Error(),
			ErrorBody: err.Error(),
		}
	case errors.Is(err, types.ErrMalformedEntity):
		return badRequest(err.Error())
	}
	return err
}

type apiMessage struct {
	Message string `msgpack:"message" json:"message"`
}

// RenderData takes a interface{} object and writes the encoded representation of it.
// Encoding used will be idented JSON, non-idented JSON, Msgpack or XML
func RenderData(c *yarf.Context, data interface{}, cacheControl string) {
	renderData(c, http.StatusOK, data, cacheControl)
}

func renderCreated(c *yarf.Context, data interface{}) {
	renderData(c, http.StatusCreated, data, noCache)
}

func renderData(c *yarf.Context, status int, data interface{}, cacheControl string) {
	c.Response.Header().Set("Cache-Control", cacheControl)
	accept := c.Request.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "json"):
		c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeStatus(c, status)
		c.RenderJSON(data)
	case strings.Contains(accept, "xml") && !strings.Contains(accept, "xhtml"):
		c.Response.Header().Set("Content-Type", "application/xml; charset=utf-8")
		writeStatus(c, status)
		c.RenderXML(data)
	case strings.Contains(accept, "msgpack"):
		c.Response.Header().Set("Content-Type", "application/msgpack")
		writeStatus(c, status)
		RenderMsgpack(c, data)
	default:
		c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeStatus(c, status)
		c.RenderJSONIndent(data)
	}
}

// headers can't be changed once the status is written
func writeStatus(c *yarf.Context, status int) {
	if status != http.StatusOK {
		c.Response.WriteHeader(status)
	}
}

// RenderMsgpack takes a interface{} object and writes the Msgpack encoded string of it.
func RenderMsgpack(c *yarf.Context, data interface{}) {
	encoded, err := msgpack.Marshal(data)
	if err != nil {
		log.Println(err)
		c.Response.Write([]byte(err.Error()))
	} else {
		c.Response.Write(encoded)
	}
}

const noCache = "no-cache, no-store, must-revalidate"
