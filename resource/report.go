package resource

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/utils"
	"github.com/yarf-framework/yarf"
)

// Report composites resource
type Report struct {
	resource
}

type apiMonth struct {
	compute.MonthlyStats `msgpack:",inline"`
	Label                string `msgpack:"label" json:"label"`
}

type apiReport struct {
	Kind        compute.ScopeKind  `msgpack:"type" json:"type"`
	EntityID    string             `msgpack:"entity_id" json:"entity_id"`
	EntityName  string             `msgpack:"entity_name" json:"entity_name"`
	Statistics  compute.Statistics `msgpack:"statistics" json:"statistics"`
	Monthly     []apiMonth         `msgpack:"monthly" json:"monthly"`
	GeneratedAt time.Time          `msgpack:"generated_at" json:"generated_at"`
}

type apiWhatsAppRequest struct {
	PhoneNumber string `msgpack:"phone_number" json:"phone_number"`
}

type apiWhatsAppResponse struct {
	WhatsAppURL string `msgpack:"whatsapp_url" json:"whatsapp_url"`
	Message     string `msgpack:"message" json:"message"`
}

// WithDependencies associates the database, session store and stats handler with this resource
func (r *Report) WithDependencies(deps Dependencies) *Report {
	r.with(deps)
	return r
}

// build authenticates the request and computes the report it asks for
func (r *Report) build(c *yarf.Context, now time.Time) (*compute.Report, *compute.Snapshot, error) {
	tx, err := r.Beginx()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Commit() // read-only tx

	session, err := r.authenticate(c, tx)
	if err != nil {
		return nil, nil, err
	}
	kind, ok := compute.ParseScopeKind(c.Param("kind"))
	if !ok {
		return nil, nil, badRequest("Unknown report type: " + c.Param("kind"))
	}

	report, s, err := r.stats.Report(tx, session.User, kind, c.Param("id"), now)
	if err != nil {
		return nil, nil, apiError(err)
	}
	return report, s, nil
}

// Get serves HTTP GET requests on this resource
func (r *Report) Get(c *yarf.Context) error {
	report, s, err := r.build(c, time.Now())
	if err != nil {
		return err
	}

	switch c.Param("format") {
	case "":
		data := apiReport{
			Kind:        report.Kind,
			EntityID:    report.EntityID,
			EntityName:  report.EntityName,
			Statistics:  report.Statistics,
			Monthly:     make([]apiMonth, len(report.Monthly)),
			GeneratedAt: report.GeneratedAt,
		}
		for i, m := range report.Monthly {
			data.Monthly[i] = apiMonth{
				MonthlyStats: m,
				Label:        utils.FormatFrenchMonth(time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)),
			}
		}
		RenderData(c, data, noCache)
	case "csv":
		c.Response.Header().Set("Content-Type", "text/csv; charset=utf-8")
		c.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, compute.CSVFilename(report)))
		c.Response.Header().Set("Cache-Control", noCache)
		c.Response.Write([]byte(compute.ExportCSV(s, report)))
	default:
		return notFound("Format")
	}
	return nil
}

// Post serves HTTP POST requests on this resource
func (r *Report) Post(c *yarf.Context) error {
	if c.Param("format") != "whatsapp" {
		return &yarf.CustomError{
			HTTPCode:  http.StatusMethodNotAllowed,
			ErrorMsg:  "Method not allowed",
			ErrorBody: "Method not allowed",
		}
	}
	var request apiWhatsAppRequest
	err := r.DecodeRequest(c, &request)
	if err != nil {
		return err
	}

	now := time.Now()
	report, _, err := r.build(c, now)
	if err != nil {
		return err
	}
	message := compute.WhatsAppMessage(report, now)
	RenderData(c, apiWhatsAppResponse{
		WhatsAppURL: compute.WhatsAppURL(request.PhoneNumber, message),
		Message:     message,
	}, noCache)
	return nil
}
