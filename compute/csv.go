package compute

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fasorail/recharges/types"
	"github.com/fasorail/recharges/utils"
)

// csvBuilder writes rows of comma-separated, always double-quoted cells
type csvBuilder struct {
	strings.Builder
}

func (b *csvBuilder) row(cells ...string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

func (b *csvBuilder) blank() {
	b.WriteString("\r\n")
}

func (b *csvBuilder) section(title string, headers ...string) {
	b.blank()
	b.row(title)
	b.row(headers...)
}

func csvNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func csvDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return utils.FormatFrenchDate(t)
}

// PaymentTypeLabel returns the French label of a payment type
func PaymentTypeLabel(p types.PaymentType) string {
	switch p {
	case types.PaymentPrepaid:
		return "Prépayé"
	case types.PaymentPostpaid:
		return "Postpayé"
	}
	return string(p)
}

// sortedGroups returns the groups ordered by name, then ID
func sortedGroups(groups map[string]*GroupStats) []*GroupStats {
	sorted := make([]*GroupStats, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name == sorted[j].Name {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// ExportCSV renders a report as a CSV document: a metadata block, then one
// section per group of statistics, each made of a title row, a header row
// and data rows. Every cell is quoted. s is used to resolve the gare and
// line number of each recharge.
func ExportCSV(s *Snapshot, report *Report) string {
	var b csvBuilder
	stats := report.Statistics

	b.row("Rapport", report.Kind.Label())
	b.row("Entité", report.EntityName)
	b.row("Généré le", utils.FormatFrenchDateTime(report.GeneratedAt))

	b.section("STATISTIQUES GÉNÉRALES", "Indicateur", "Valeur")
	b.row("Recharges totales", strconv.Itoa(stats.TotalRecharges))
	b.row("Recharges actives", strconv.Itoa(stats.ActiveRecharges))
	b.row("Expirent bientôt", strconv.Itoa(stats.ExpiringRecharges))
	b.row("Recharges expirées", strconv.Itoa(stats.ExpiredRecharges))
	if stats.UnknownRecharges > 0 {
		b.row("Statut inconnu", strconv.Itoa(stats.UnknownRecharges))
	}
	b.row("Coût total (FCFA)", csvNumber(stats.TotalCost))
	if report.Kind == ScopeZone {
		b.row("Agences", strconv.Itoa(stats.TotalAgencies))
	}
	if report.Kind != ScopeGare {
		b.row("Gares", strconv.Itoa(stats.TotalGares))
	}

	b.section("RÉPARTITION PAR OPÉRATEUR", "Opérateur", "Recharges", "Actives", "Coût total (FCFA)")
	for _, g := range sortedGroups(stats.OperatorStats) {
		b.row(g.Name, strconv.Itoa(g.Count), strconv.Itoa(g.ActiveCount), csvNumber(g.TotalCost))
	}

	if stats.AgencyStats != nil {
		b.section("RÉPARTITION PAR AGENCE", "Agence", "Gares", "Recharges", "Actives", "Coût total (FCFA)")
		for _, g := range sortedGroups(stats.AgencyStats) {
			b.row(g.Name, strconv.Itoa(g.Gares), strconv.Itoa(g.Count), strconv.Itoa(g.ActiveCount), csvNumber(g.TotalCost))
		}
	}

	if stats.GareStats != nil {
		b.section("RÉPARTITION PAR GARE", "Gare", "Recharges", "Actives", "Coût total (FCFA)")
		for _, g := range sortedGroups(stats.GareStats) {
			b.row(g.Name, strconv.Itoa(g.Count), strconv.Itoa(g.ActiveCount), csvNumber(g.TotalCost))
		}
	}

	b.section("ÉVOLUTION MENSUELLE", "Mois", "Recharges", "Coût total (FCFA)", "Coût moyen (FCFA)", "Volumes")
	for _, m := range report.Monthly {
		month := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
		b.row(utils.FormatFrenchMonth(month), strconv.Itoa(m.Count), csvNumber(m.TotalCost),
			strconv.FormatFloat(m.AverageCost, 'f', 2, 64), strings.Join(m.Volumes, ", "))
	}

	b.section("DÉTAIL DES RECHARGES", "Ligne", "Gare", "Opérateur", "Type de paiement",
		"Volume", "Coût (FCFA)", "Début", "Fin", "Statut")
	for _, r := range report.Recharges {
		cost, _ := r.ValidCost()
		b.row(s.RechargeLineNumber(r), s.GareName(s.RechargeGareID(r)), r.Operator,
			PaymentTypeLabel(r.PaymentType), r.Volume, csvNumber(cost),
			csvDate(r.StartDate), csvDate(r.EndDate), StatusOf(r, report.GeneratedAt).Label())
	}
	return b.String()
}

// CSVFilename returns a file name suitable for downloading the CSV export of report
func CSVFilename(report *Report) string {
	name := utils.NormalizeText(report.EntityName)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	return "rapport_" + string(report.Kind) + "_" + name + "_" + report.GeneratedAt.Format("2006-01-02") + ".csv"
}
