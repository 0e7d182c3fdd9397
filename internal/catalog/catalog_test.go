package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/kilowatt/internal/filter"
	"github.com/jask/kilowatt/internal/nav"
	"github.com/jask/kilowatt/internal/record"
	"github.com/jask/kilowatt/internal/wizard"
)

func TestColumnRender(t *testing.T) {
	r := record.Record{"name": "ABC", "manager": nil, "bill": 5400.0, "cents": 12.5, "usage": 45000.4, "rate": 0.005}

	require.Equal(t, "ABC", Column{Field: "name"}.Render(r, "$"))
	require.Equal(t, filter.UnassignedLabel, Column{Field: "manager"}.Render(r, "$"))
	require.Equal(t, "-", Column{Field: "manager", Format: Money}.Render(r, "$"))
	require.Equal(t, "$5,400", Column{Field: "bill", Format: Money}.Render(r, "$"))
	require.Equal(t, "€12.5", Column{Field: "cents", Format: Money}.Render(r, "€"))
	require.Equal(t, "45,000 kWh", Column{Field: "usage", Format: Energy}.Render(r, "$"))
	require.Equal(t, "0.5%", Column{Field: "rate", Format: Percent}.Render(r, "$"))
}

func TestNextSortCycles(t *testing.T) {
	c := Commissions
	require.Equal(t, "account_name", c.NextSort(""))
	require.Equal(t, "commission_amount", c.NextSort("account_name"))
	require.Equal(t, "contract_expiration", c.NextSort("commission_amount"))
	require.Equal(t, "", c.NextSort("contract_expiration"))
	require.Equal(t, "", c.NextSort("bogus"))
}

func TestCollectionsAreConsistent(t *testing.T) {
	forms, err := wizard.Forms()
	require.NoError(t, err)
	for _, c := range All {
		got, ok := ForPage(c.Page)
		require.True(t, ok, c.Name)
		require.Equal(t, c.Name, got.Name)
		require.NotEmpty(t, c.Searchable, c.Name)
		require.Equal(t, c.Searchable, c.Engine().Searchable())
		if c.Form != "" {
			_, ok := forms[c.Form]
			require.True(t, ok, "form %s", c.Form)
		}
	}
	_, ok := ForPage(nav.PageHome)
	require.False(t, ok)

	_, err = Lookup("commissions")
	require.NoError(t, err)
	_, err = Lookup("invoices")
	require.Error(t, err)
}
