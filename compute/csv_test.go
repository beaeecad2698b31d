package compute

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/fasorail/recharges/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSVZoneReport(t *testing.T) {
	s := newTestSnapshot()
	report, err := BuildReport(s, ScopeZone, "z1", testNow)
	require.NoError(t, err)

	out := ExportCSV(s, report)
	lines := strings.Split(out, "\r\n")

	assert.Equal(t, `"Rapport","Zone"`, lines[0])
	assert.Equal(t, `"Entité","Centre"`, lines[1])
	assert.Equal(t, `"Généré le","16/10/2026 à 12:00"`, lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, `"STATISTIQUES GÉNÉRALES"`, lines[4])
	assert.Equal(t, `"Indicateur","Valeur"`, lines[5])

	for _, want := range []string{
		`"Recharges totales","2"`,
		`"Expirent bientôt","1"`,
		`"Recharges expirées","1"`,
		`"Coût total (FCFA)","3000"`,
		`"Agences","1"`,
		`"Gares","2"`,
		`"RÉPARTITION PAR OPÉRATEUR"`,
		`"Orange","2","0","3000"`,
		`"RÉPARTITION PAR AGENCE"`,
		`"Agence Ouaga","2","2","0","3000"`,
		`"RÉPARTITION PAR GARE"`,
		`"Koudougou","1","0","2000"`,
		`"Ouagadougou","1","0","1000"`,
		`"ÉVOLUTION MENSUELLE"`,
		`"septembre 2026","1","2000","2000.00","10GB"`,
		`"octobre 2026","1","1000","1000.00","5GB"`,
		`"DÉTAIL DES RECHARGES"`,
		`"70000001","Ouagadougou","Orange","Prépayé","5GB","1000","01/10/2026","15/10/2026","Expiré"`,
		`"70000002","Koudougou","Orange","Prépayé","10GB","2000","19/09/2026","19/10/2026","Expire bientôt"`,
	} {
		assert.Contains(t, lines, want)
	}
	assert.NotContains(t, out, "Moov")
	assert.NotContains(t, out, "Statut inconnu")

	// gares are listed by name, months chronologically
	assert.Less(t, strings.Index(out, `"Koudougou","1"`), strings.Index(out, `"Ouagadougou","1"`))
	assert.Less(t, strings.Index(out, "septembre 2026"), strings.Index(out, "octobre 2026"))
}

func TestExportCSVEveryCellQuoted(t *testing.T) {
	s := newTestSnapshot()
	s.Gares[0].Name = `Gare "Nord", Ouaga`
	report, err := BuildReport(s, ScopeGare, "g1", testNow)
	require.NoError(t, err)
	out := ExportCSV(s, report)

	for _, line := range strings.Split(out, "\r\n") {
		if line == "" {
			continue
		}
		assert.True(t, strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`), line)
	}
	assert.Contains(t, out, `"Entité","Gare ""Nord"", Ouaga"`)

	// the output is valid CSV that reads back the embedded comma and quotes
	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Entité", `Gare "Nord", Ouaga`}, records[1])
}

func TestExportCSVGareReportHasNoGroupSections(t *testing.T) {
	s := newTestSnapshot()
	report, err := BuildReport(s, ScopeGare, "g3", testNow)
	require.NoError(t, err)
	out := ExportCSV(s, report)

	assert.NotContains(t, out, "RÉPARTITION PAR GARE")
	assert.NotContains(t, out, "RÉPARTITION PAR AGENCE")
	assert.NotContains(t, out, `"Gares"`)
	assert.Contains(t, out, `"Postpayé"`)
	assert.Contains(t, out, `"Actif"`)
}

func TestExportCSVEmptyReport(t *testing.T) {
	s := NewSnapshot(nil, nil, []*types.Gare{{ID: "g", Name: "Vide"}}, nil, nil)
	report, err := BuildReport(s, ScopeGare, "g", testNow)
	require.NoError(t, err)
	out := ExportCSV(s, report)

	assert.Contains(t, out, `"Recharges totales","0"`)
	assert.Contains(t, out, `"Coût total (FCFA)","0"`)
	assert.Contains(t, out, `"DÉTAIL DES RECHARGES"`)
	assert.True(t, strings.HasSuffix(out, "\"Statut\"\r\n"))
}

func TestExportCSVUnknownParents(t *testing.T) {
	s := newTestSnapshot()
	legacy := &types.Recharge{ID: "r9", GareID: "gone", Operator: "Orange", Volume: "1GB",
		PaymentType: types.PaymentPrepaid, Cost: 10, StartDate: day(2026, 10, 2)}
	report := &Report{Kind: ScopeGare, EntityName: "Inconnue", GeneratedAt: testNow,
		Recharges: []*types.Recharge{legacy},
		Statistics: Aggregate(s, ScopeGare, "gone", []*types.Recharge{legacy}, testNow)}
	out := ExportCSV(s, report)
	assert.Contains(t, out, `"N/A","Gare inconnue","Orange","Prépayé","1GB","10","02/10/2026","N/A","Inconnu"`)
	assert.Contains(t, out, `"Statut inconnu","1"`)
}

func TestCSVFilename(t *testing.T) {
	report := &Report{Kind: ScopeGare, EntityName: "Bobo-Dioulasso Péage", GeneratedAt: testNow}
	assert.Equal(t, "rapport_gare_bobo_dioulasso_peage_2026-10-16.csv", CSVFilename(report))
}
