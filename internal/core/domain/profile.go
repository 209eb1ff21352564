package domain

// ColumnProfile summarises one column of a table.
// Quantiles are computed over non-missing values; they are NaN for non-numeric
// columns and for numeric columns without values.
type ColumnProfile struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Nulls    int        `json:"n_nulls"`
	Distinct int        `json:"n_unique"`
	Min      float64    `json:"min"`
	Q1       float64    `json:"q1"`
	Median   float64    `json:"median"`
	Mean     float64    `json:"mean"`
	Q3       float64    `json:"q3"`
	Max      float64    `json:"max"`
}

// IQR returns the inter-quartile range Q3 - Q1.
func (p ColumnProfile) IQR() float64 {
	return p.Q3 - p.Q1
}
