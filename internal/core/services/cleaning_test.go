package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

var nan = math.NaN()

func TestProfile(t *testing.T) {
	table := domain.NewTable("t",
		domain.NewNumericColumn("x", []float64{4, 1, nan, 3, 2, 2}),
		domain.NewTextColumn("l3", []string{"a", "b", "a", "", "c", "a"}, []bool{true, true, true, false, true, true}),
	)

	profile := Profile(table)
	require.Len(t, profile, 2)

	x := profile[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, 1, x.Nulls)
	assert.Equal(t, 4, x.Distinct)
	assert.Equal(t, 1.0, x.Min)
	assert.Equal(t, 4.0, x.Max)
	assert.Equal(t, 2.0, x.Median)
	assert.InDelta(t, 2.4, x.Mean, 1e-12)
	assert.Equal(t, 2.0, x.Q1)
	assert.Equal(t, 3.0, x.Q3)

	l3 := profile[1]
	assert.Equal(t, domain.KindText, l3.Kind)
	assert.Equal(t, 1, l3.Nulls)
	assert.Equal(t, 3, l3.Distinct)
	assert.True(t, math.IsNaN(l3.Median))
}

func TestClipOutliers(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 100, nan}
	table := domain.NewTable("t",
		domain.NewNumericColumn("x", values),
		domain.NewNumericColumn("constant", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 500}),
	)

	changed := ClipOutliers(table, Profile(table))

	x, _ := table.Column("x")
	// Q1=3, Q3=7, IQR=4: bounds [-3, 13].
	assert.Equal(t, 13.0, x.Numbers[8])
	assert.Equal(t, 1.0, x.Numbers[0])
	assert.True(t, math.IsNaN(x.Numbers[9]))
	assert.Equal(t, 10, table.Rows())

	// Zero IQR leaves the column untouched.
	c, _ := table.Column("constant")
	assert.Equal(t, 500.0, c.Numbers[9])
	assert.Equal(t, 1, changed)
}

func TestCleanTemporal(t *testing.T) {
	table := domain.NewTable("t",
		domain.NewTextColumn("start_date",
			[]string{"2024-01-10", "9999-12-31", "garbage", "", "2024-01-10 08:30:00"},
			[]bool{true, true, true, true, true}),
		domain.NewTimeColumn("end_date",
			[]time.Time{time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			nil),
	)

	CleanTemporal(table, []string{"start_date", "end_date", "created_on"}, "9999-12-31")

	start, _ := table.Column("start_date")
	require.Equal(t, domain.KindTime, start.Kind)
	assert.Equal(t, []bool{true, false, false, false, true}, start.Valid)
	assert.Equal(t, 8, start.Times[4].Hour())

	end, _ := table.Column("end_date")
	assert.Equal(t, []bool{false, true}, end.Valid)

	_, ok := table.Column("created_on")
	assert.False(t, ok)
}

func TestDeriveFeatures(t *testing.T) {
	d := func(y int, m time.Month, dd, h int) time.Time { return time.Date(y, m, dd, h, 0, 0, 0, time.UTC) }
	table := domain.NewTable("t",
		domain.NewTimeColumn("start_date", []time.Time{d(2024, 1, 1, 0), d(2024, 1, 1, 0), {}}, []bool{true, true, false}),
		domain.NewTimeColumn("end_date", []time.Time{d(2024, 1, 11, 12), {}, d(2024, 1, 5, 0)}, []bool{true, false, true}),
		domain.NewTimeColumn("created_on", []time.Time{d(2023, 12, 1, 0), d(2024, 1, 1, 0), {}}, []bool{true, true, false}),
	)

	DeriveFeatures(table, d(2024, 1, 31, 6))

	active, _ := table.Column(domain.ColumnDaysActive)
	assert.Equal(t, 10.0, active.Numbers[0])
	assert.True(t, math.IsNaN(active.Numbers[1]))
	assert.True(t, math.IsNaN(active.Numbers[2]))

	age, _ := table.Column(domain.ColumnCreatedAge)
	assert.Equal(t, 61.0, age.Numbers[0])
	assert.Equal(t, 30.0, age.Numbers[1])
	assert.True(t, math.IsNaN(age.Numbers[2]))
}

func TestDeriveFeatures_AbsentColumns(t *testing.T) {
	table := domain.NewTable("t", domain.NewNumericColumn("price", []float64{1, 2}))

	DeriveFeatures(table, time.Now())

	active, ok := table.Column(domain.ColumnDaysActive)
	require.True(t, ok)
	assert.True(t, math.IsNaN(active.Numbers[0]))
}

func surfaceTable() *domain.Table {
	return domain.NewTable("t",
		domain.NewNumericColumn(domain.ColumnSurfaceTotal, []float64{50, 80, nan, 40}),
		domain.NewNumericColumn(domain.ColumnSurfaceCovered, []float64{60, 70, 30, 40}),
	)
}

func TestApplySurfacePolicy_Clamp(t *testing.T) {
	table := surfaceTable()

	n := ApplySurfacePolicy(table, domain.SurfacePolicyClamp)

	covered, _ := table.Column(domain.ColumnSurfaceCovered)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float64{50, 70, 30, 40}, covered.Numbers)
	_, flagged := table.Column(domain.ColumnSurfaceFlagged)
	assert.False(t, flagged)
}

func TestApplySurfacePolicy_Flag(t *testing.T) {
	table := surfaceTable()

	n := ApplySurfacePolicy(table, domain.SurfacePolicyFlag)

	covered, _ := table.Column(domain.ColumnSurfaceCovered)
	flags, ok := table.Column(domain.ColumnSurfaceFlagged)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float64{60, 70, 30, 40}, covered.Numbers)
	assert.Equal(t, []float64{1, 0, 0, 0}, flags.Numbers)
}

func TestDropMissingTarget(t *testing.T) {
	table := domain.NewTable("t",
		domain.NewNumericColumn(domain.ColumnPrice, []float64{100, nan, 300}),
		domain.NewTextColumn(domain.ColumnL3, []string{"a", "b", "c"}, nil),
	)

	out := DropMissingTarget(table)
	assert.Equal(t, 2, out.Rows())
	l3, _ := out.Column(domain.ColumnL3)
	assert.Equal(t, []string{"a", "c"}, l3.Texts)

	none := DropMissingTarget(domain.NewTable("t", domain.NewTextColumn("x", []string{"a"}, nil)))
	assert.Equal(t, 0, none.Rows())
}

func TestCleaner_Clean(t *testing.T) {
	settings := domain.DefaultSettings("/data").Cleaning
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	raw := domain.NewTable("datos_raw",
		domain.NewTextColumn("id", []string{"1", "2", "3", "4"}, nil),
		domain.NewTextColumn("title", []string{"a", "b", "c", "d"}, nil),
		domain.NewTextColumn(domain.ColumnL3, []string{"Palermo", "Belgrano", "Palermo", "Caballito"}, nil),
		domain.NewNumericColumn(domain.ColumnPrice, []float64{100000, 120000, 90000, 110000}),
		domain.NewNumericColumn(domain.ColumnSurfaceTotal, []float64{50, 60, 40, 55}),
		domain.NewNumericColumn(domain.ColumnSurfaceCovered, []float64{45, 70, 40, 50}),
		domain.NewTextColumn(domain.ColumnStartDate, []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01"}, nil),
		domain.NewTextColumn(domain.ColumnEndDate, []string{"2024-01-31", "9999-12-31", "2024-03-11", "2024-04-02"}, nil),
		domain.NewTextColumn(domain.ColumnCreatedOn, []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01"}, nil),
	)

	clean, profile := NewCleaner(settings, func() time.Time { return now }).Clean(raw)

	assert.NotEmpty(t, profile)
	names := clean.ColumnNames()
	assert.NotContains(t, names, "id")
	assert.NotContains(t, names, "title")
	assert.Contains(t, names, domain.ColumnDaysActive)
	assert.Contains(t, names, domain.ColumnCreatedAge)
	assert.Equal(t, 4, clean.Rows())

	active, _ := clean.Column(domain.ColumnDaysActive)
	assert.Equal(t, 30.0, active.Numbers[0])
	assert.True(t, math.IsNaN(active.Numbers[1]))

	covered, _ := clean.Column(domain.ColumnSurfaceCovered)
	total, _ := clean.Column(domain.ColumnSurfaceTotal)
	for i := range covered.Numbers {
		assert.LessOrEqual(t, covered.Numbers[i], total.Numbers[i])
	}
}
